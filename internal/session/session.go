// Package session keeps interactive heatmap scenes in memory. Each session
// owns one render.Scene; every request touching it is serialized by the
// session lock, and the scene outputs raised during a request are returned
// to that request as events.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/render"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
	"github.com/jengzang/floorheat-backend-go/internal/viewport"
	"github.com/jengzang/floorheat-backend-go/internal/zone"
)

// Event types
const (
	EventRangeChange     = "range_change"
	EventAlignmentChange = "alignment_change"
	EventVisibleChange   = "visible_change"
	EventZoneComplete    = "zone_complete"
)

// Event is one scene output
type Event struct {
	Type      string               `json:"type"`
	Range     *raster.Range        `json:"range,omitempty"`
	Alignment *AlignmentView       `json:"alignment,omitempty"`
	Visible   *viewport.Visibility `json:"visible,omitempty"`
	// Zoomed is false when the view returned to the unzoomed state and the
	// visible statistic no longer applies
	Zoomed bool        `json:"zoomed,omitempty"`
	Zone   *zone.Draft `json:"zone,omitempty"`
}

// AlignmentView is the wire form of an alignment
type AlignmentView struct {
	Mode   string               `json:"mode"`
	Simple *transform.Simple    `json:"simple,omitempty"`
	Affine *models.AffineParams `json:"affine,omitempty"`
}

// AlignmentOf converts an alignment to its wire form
func AlignmentOf(a transform.Alignment) AlignmentView {
	switch v := a.(type) {
	case transform.Affine:
		p := models.AffineParamsOf(v)
		return AlignmentView{Mode: v.Mode(), Affine: &p}
	case transform.Simple:
		return AlignmentView{Mode: v.Mode(), Simple: &v}
	default:
		id := transform.Identity()
		return AlignmentView{Mode: transform.ModeSimple, Simple: &id}
	}
}

// Session is one interactive scene
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	request  service.SceneRequest
	scene    *render.Scene
	events   []Event
	lastUsed atomic.Int64 // unix nanos
}

// State is a snapshot of a session for clients
type State struct {
	ID           string             `json:"id"`
	StoreID      int64              `json:"store_id"`
	Floor        int                `json:"floor"`
	Mode         string             `json:"data_mode"`
	Interaction  render.Mode        `json:"interaction"`
	Viewport     transform.Viewport `json:"viewport"`
	Alignment    AlignmentView      `json:"alignment"`
	Scale        raster.Scale       `json:"scale"`
	Selection    []int64            `json:"selection"`
	Sources      int                `json:"calibration_sources"`
	Destinations int                `json:"calibration_destinations"`
	Generation   uint64             `json:"generation"`
	Fresh        bool               `json:"fresh"`
	CreatedAt    time.Time          `json:"created_at"`
}

func newSession(id string, req service.SceneRequest, canvas transform.Size, in render.Input, now time.Time) *Session {
	s := &Session{ID: id, CreatedAt: now, request: req}
	s.touch(now)
	s.scene = render.NewScene(canvas, in, render.Hooks{
		OnRangeChange: func(r raster.Range) {
			s.events = append(s.events, Event{Type: EventRangeChange, Range: &r})
		},
		OnAlignmentChange: func(a transform.Alignment) {
			v := AlignmentOf(a)
			s.events = append(s.events, Event{Type: EventAlignmentChange, Alignment: &v})
		},
		OnVisibleChange: func(v viewport.Visibility, ok bool) {
			s.events = append(s.events, Event{Type: EventVisibleChange, Visible: &v, Zoomed: ok})
		},
		OnZoneComplete: func(d zone.Draft) {
			s.events = append(s.events, Event{Type: EventZoneComplete, Zone: &d})
		},
	})
	return s
}

// Do runs fn with exclusive access to the scene and returns the events it
// raised
func (s *Session) Do(fn func(*render.Scene) error) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())

	err := fn(s.scene)
	events := s.events
	s.events = nil
	return events, err
}

// Frame returns the latest frame, rendering only when the inputs changed
func (s *Session) Frame() (render.Frame, []Event) {
	var f render.Frame
	events, _ := s.Do(func(sc *render.Scene) error {
		if cur, ok := sc.Current(); ok && sc.Fresh() {
			f = cur
			return nil
		}
		f = sc.Render()
		return nil
	})
	return f, events
}

// Request returns the data selection the session was built from
func (s *Session) Request() service.SceneRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request
}

// State snapshots the session
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.scene
	in := sc.Input()
	src, dst := sc.Calibration()
	return State{
		ID:           s.ID,
		StoreID:      s.request.StoreID,
		Floor:        s.request.Filter.Floor,
		Mode:         in.Samples.Mode(),
		Interaction:  sc.Mode(),
		Viewport:     sc.Viewport(),
		Alignment:    AlignmentOf(in.Alignment),
		Scale:        in.Scale,
		Selection:    sc.Selection(),
		Sources:      len(src),
		Destinations: len(dst),
		Generation:   sc.Generation(),
		Fresh:        sc.Fresh(),
		CreatedAt:    s.CreatedAt,
	}
}

// reload swaps the data inputs. Viewport, alignment and scale are kept.
func (s *Session) reload(req service.SceneRequest, in render.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())
	s.request = req
	s.scene.SetSamples(in.Samples)
	s.scene.SetFrame(in.Frame)
	s.scene.SetZones(in.Zones, in.Labels)
	s.scene.SetUnderlay(in.Underlay)
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}
