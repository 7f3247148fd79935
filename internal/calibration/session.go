package calibration

import (
	"errors"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// ErrSessionFull is returned when a fourth point is picked for one side
var ErrSessionFull = errors.New("calibration side already has 3 points")

// PointsPerSide is the number of pairs a calibration session collects
const PointsPerSide = 3

// Session collects up to three source points (picked on the density layer)
// and three destination points (picked on the floor plan). It is transient:
// a successful Solve or a degenerate failure empties it.
type Session struct {
	sources      []r2.Point
	destinations []r2.Point
}

// NewSession creates an empty calibration session
func NewSession() *Session {
	return &Session{}
}

// AddSource records a source point in density-layer screen space
func (s *Session) AddSource(p r2.Point) error {
	if len(s.sources) >= PointsPerSide {
		return ErrSessionFull
	}
	s.sources = append(s.sources, p)
	return nil
}

// AddDestination records a destination point in floor-plan screen space
func (s *Session) AddDestination(p r2.Point) error {
	if len(s.destinations) >= PointsPerSide {
		return ErrSessionFull
	}
	s.destinations = append(s.destinations, p)
	return nil
}

// Sources returns a copy of the picked source points
func (s *Session) Sources() []r2.Point {
	return append([]r2.Point(nil), s.sources...)
}

// Destinations returns a copy of the picked destination points
func (s *Session) Destinations() []r2.Point {
	return append([]r2.Point(nil), s.destinations...)
}

// Complete reports whether both triples have been picked
func (s *Session) Complete() bool {
	return len(s.sources) == PointsPerSide && len(s.destinations) == PointsPerSide
}

// Reset discards all picked points
func (s *Session) Reset() {
	s.sources = nil
	s.destinations = nil
}

// Solve finalizes the session. On success the affine alignment is returned
// and the session is emptied. A degenerate triple also empties the session
// so the operator starts over; an incomplete session is left untouched.
func (s *Session) Solve() (transform.Affine, error) {
	if !s.Complete() {
		return transform.Affine{}, ErrIncomplete
	}

	var src, dst [3]r2.Point
	copy(src[:], s.sources)
	copy(dst[:], s.destinations)
	s.Reset()

	return SolveAffine(src, dst)
}
