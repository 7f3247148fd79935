// Package render owns the interactive heatmap scene: the current inputs,
// the gesture state machines and the frames derived from them.
//
// A Scene is single-owner. Every input change bumps a generation counter;
// frames are built from an immutable snapshot (Prepare then Job.Run) and
// only the frame matching the latest generation is accepted. Stale frames
// are dropped whole, never merged.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/calibration"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
	"github.com/jengzang/floorheat-backend-go/internal/viewport"
	"github.com/jengzang/floorheat-backend-go/internal/zone"
)

// Mode is the current pointer interaction
type Mode string

const (
	ModePan       Mode = "pan"
	ModeCalibrate Mode = "calibrate"
	ModeDrawZone  Mode = "draw_zone"
)

// ErrWrongMode is returned when a gesture does not fit the current mode
var ErrWrongMode = errors.New("operation not allowed in current mode")

// Hooks receive the scene outputs. Nil hooks are skipped.
type Hooks struct {
	// OnRangeChange fires when an accepted auto-scaled frame has a different
	// range than the last one reported.
	OnRangeChange func(raster.Range)
	// OnAlignmentChange fires on calibration completion, reset or explicit
	// replacement.
	OnAlignmentChange func(transform.Alignment)
	// OnVisibleChange fires when the visible statistic changes. ok is false
	// when the view is unzoomed and no statistic applies.
	OnVisibleChange func(v viewport.Visibility, ok bool)
	// OnZoneComplete fires when a zone drag is released above the minimum
	// size.
	OnZoneComplete func(zone.Draft)
}

// Input is everything a frame depends on
type Input struct {
	Samples   raster.Samples
	Frame     transform.Frame
	Alignment transform.Alignment
	Scale     raster.Scale
	Options   raster.Options
	Zones     []models.Zone
	Labels    map[int64]string
	Underlay  image.Image
}

// Scene is the single owner of rendering state. Not safe for concurrent use.
type Scene struct {
	hooks Hooks
	input Input

	view      *viewport.Controller
	calib     *calibration.Session
	drawer    zone.Drawer
	selection zone.Selection
	mode      Mode

	generation uint64
	current    *Frame

	reportedRange   *raster.Range
	reportedVisible *visibleReport
}

type visibleReport struct {
	v  viewport.Visibility
	ok bool
}

// NewScene creates a scene on a canvas of the given size
func NewScene(canvas transform.Size, in Input, hooks Hooks) *Scene {
	if in.Alignment == nil {
		in.Alignment = transform.Identity()
	}
	if in.Samples == nil {
		in.Samples = raster.Tracks{}
	}
	return &Scene{
		hooks:      hooks,
		input:      in,
		view:       viewport.New(canvas),
		calib:      calibration.NewSession(),
		selection:  zone.Selection{},
		mode:       ModePan,
		generation: 1,
	}
}

// Generation returns the generation of the latest input
func (s *Scene) Generation() uint64 {
	return s.generation
}

func (s *Scene) invalidate() {
	s.generation++
}

// Mode returns the current interaction mode
func (s *Scene) Mode() Mode {
	return s.mode
}

// Input returns a copy of the current input
func (s *Scene) Input() Input {
	return s.input
}

// Pipeline returns the current transform pipeline
func (s *Scene) Pipeline() transform.Pipeline {
	return s.view.Pipeline(transform.Pipeline{Frame: s.input.Frame, Alignment: s.input.Alignment})
}

// Viewport returns the current zoom/pan state
func (s *Scene) Viewport() transform.Viewport {
	return s.view.State()
}

// Selection returns the selected zone ids
func (s *Scene) Selection() []int64 {
	return s.selection.IDs()
}

// Calibration returns the points picked so far
func (s *Scene) Calibration() (sources, destinations []r2.Point) {
	return s.calib.Sources(), s.calib.Destinations()
}

// SetSamples replaces the dataset
func (s *Scene) SetSamples(samples raster.Samples) {
	if samples == nil {
		samples = raster.Tracks{}
	}
	s.input.Samples = samples
	s.invalidate()
}

// SetFrame replaces the reference frame
func (s *Scene) SetFrame(f transform.Frame) {
	s.input.Frame = f
	s.invalidate()
}

// SetScale replaces the scale settings
func (s *Scene) SetScale(scale raster.Scale) {
	s.input.Scale = scale
	s.invalidate()
}

// SetOptions replaces the rasterizer options
func (s *Scene) SetOptions(opts raster.Options) {
	s.input.Options = opts
	s.invalidate()
}

// SetZones replaces the zone list and its labels
func (s *Scene) SetZones(zones []models.Zone, labels map[int64]string) {
	s.input.Zones = zones
	s.input.Labels = labels
	s.invalidate()
}

// SetUnderlay replaces the floor-plan image
func (s *Scene) SetUnderlay(img image.Image) {
	s.input.Underlay = img
	s.invalidate()
}

// SetCanvas resizes the canvas
func (s *Scene) SetCanvas(size transform.Size) {
	s.view.SetCanvas(size)
	s.invalidate()
}

// SetAlignment replaces the alignment and reports it
func (s *Scene) SetAlignment(a transform.Alignment) {
	if a == nil {
		a = transform.Identity()
	}
	s.input.Alignment = a
	s.invalidate()
	if s.hooks.OnAlignmentChange != nil {
		s.hooks.OnAlignmentChange(a)
	}
}

// ResetAlignment returns to the identity simple alignment
func (s *Scene) ResetAlignment() {
	s.SetAlignment(transform.Identity())
}

// SetViewport replaces zoom and pan
func (s *Scene) SetViewport(v transform.Viewport) {
	s.view.SetState(v)
	s.invalidate()
}

// ResetViewport returns to zoom 1, no pan
func (s *Scene) ResetViewport() {
	s.view.Reset()
	s.invalidate()
}

// ZoomAt zooms by factor anchored at the screen point
func (s *Scene) ZoomAt(factor float64, pointer r2.Point) bool {
	if !s.view.ZoomAt(factor, pointer) {
		return false
	}
	s.invalidate()
	return true
}

// Wheel zooms one step in or out at the pointer
func (s *Scene) Wheel(deltaY float64, pointer r2.Point) bool {
	if !s.view.Wheel(deltaY, pointer) {
		return false
	}
	s.invalidate()
	return true
}

// BeginCalibration discards any picked points and enters calibration mode
func (s *Scene) BeginCalibration() {
	s.cancelGestures()
	s.calib.Reset()
	s.mode = ModeCalibrate
}

// BeginZoneDraw enters zone drawing mode
func (s *Scene) BeginZoneDraw() {
	s.cancelGestures()
	s.mode = ModeDrawZone
}

// Cancel leaves any special mode and drops unfinished gestures
func (s *Scene) Cancel() {
	s.cancelGestures()
	s.calib.Reset()
	s.mode = ModePan
}

func (s *Scene) cancelGestures() {
	s.drawer.Cancel()
	s.view.CancelDrag()
}

// PickSource records a calibration source point clicked on the heat layer.
// The point is mapped back to unaligned canvas space.
func (s *Scene) PickSource(screen r2.Point) (*transform.Affine, error) {
	if s.mode != ModeCalibrate {
		return nil, ErrWrongMode
	}
	p := s.Pipeline()
	canvasPt := p.Alignment.Invert(p.Viewport.Invert(screen, p.Canvas), p.Canvas)
	if err := s.calib.AddSource(canvasPt); err != nil {
		return nil, err
	}
	return s.trySolve()
}

// PickDestination records a calibration destination point clicked on the
// floor plan, which is drawn without alignment.
func (s *Scene) PickDestination(screen r2.Point) (*transform.Affine, error) {
	if s.mode != ModeCalibrate {
		return nil, ErrWrongMode
	}
	p := s.Pipeline()
	if err := s.calib.AddDestination(p.Viewport.Invert(screen, p.Canvas)); err != nil {
		return nil, err
	}
	return s.trySolve()
}

// trySolve solves once both triples are complete. A degenerate triple
// discards the session and leaves the alignment untouched.
func (s *Scene) trySolve() (*transform.Affine, error) {
	if !s.calib.Complete() {
		return nil, nil
	}
	aff, err := s.calib.Solve()
	if err != nil {
		return nil, fmt.Errorf("failed to solve calibration: %w", err)
	}
	s.mode = ModePan
	s.SetAlignment(aff)
	return &aff, nil
}

// PointerDown starts a pan or zone drag depending on the mode
func (s *Scene) PointerDown(p r2.Point) {
	switch s.mode {
	case ModeDrawZone:
		s.drawer.Begin(p)
	case ModePan:
		s.view.PointerDown(p)
	}
}

// PointerMove continues the current gesture
func (s *Scene) PointerMove(p r2.Point) {
	switch s.mode {
	case ModeDrawZone:
		s.drawer.Move(p)
	case ModePan:
		if s.view.PointerMove(p) {
			s.invalidate()
		}
	}
}

// PointerUp finishes the gesture. In pan mode a click (no pan engaged)
// toggles the first zone under the pointer.
func (s *Scene) PointerUp(p r2.Point) {
	switch s.mode {
	case ModeDrawZone:
		if draft, ok := s.drawer.End(p, s.Pipeline()); ok {
			s.mode = ModePan
			if s.hooks.OnZoneComplete != nil {
				s.hooks.OnZoneComplete(draft)
			}
		}
	case ModePan:
		before := s.view.State()
		g := s.view.PointerUp(p)
		if s.view.State() != before {
			s.invalidate()
		}
		if g.Click {
			if _, hit := s.selection.Click(s.input.Zones, s.Pipeline(), p); hit {
				s.invalidate()
			}
		}
	}
}

// DraftPreview returns the zone rectangle being dragged in screen space
func (s *Scene) DraftPreview() (r2.Rect, bool) {
	return s.drawer.Preview()
}
