// Package viewport turns pointer gestures into zoom and pan state and reports
// how much of the dataset is on screen.
package viewport

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

const (
	// PanThreshold is how far (px) the pointer must travel before a press
	// becomes a pan instead of a click.
	PanThreshold = 8.0
	// ZoomInFactor and ZoomOutFactor are the per-step wheel factors
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Gesture is the outcome of a pointer release
type Gesture struct {
	// Click is true when the press never exceeded PanThreshold
	Click  bool     `json:"click"`
	Point  r2.Point `json:"point"`
	Panned bool     `json:"panned"`
}

type drag struct {
	active   bool
	panning  bool
	start    r2.Point
	startPan r2.Point
}

// Controller owns zoom and pan for one canvas. It is not safe for
// concurrent use.
type Controller struct {
	state  transform.Viewport
	canvas transform.Size
	drag   drag
}

// New creates a controller at zoom 1, no pan
func New(canvas transform.Size) *Controller {
	return &Controller{state: transform.DefaultViewport(), canvas: canvas}
}

// State returns the current viewport
func (c *Controller) State() transform.Viewport {
	return c.state
}

// SetState replaces the viewport, clamping zoom. Non-finite pan resets to 0.
func (c *Controller) SetState(v transform.Viewport) {
	v.Zoom = transform.ClampZoom(v.Zoom)
	if math.IsNaN(v.Pan.X) || math.IsInf(v.Pan.X, 0) || math.IsNaN(v.Pan.Y) || math.IsInf(v.Pan.Y, 0) {
		v.Pan = r2.Point{}
	}
	c.state = v
}

// Canvas returns the canvas size
func (c *Controller) Canvas() transform.Size {
	return c.canvas
}

// SetCanvas updates the canvas size
func (c *Controller) SetCanvas(size transform.Size) {
	c.canvas = size
}

// Reset returns to zoom 1, no pan, and cancels any drag
func (c *Controller) Reset() {
	c.state = transform.DefaultViewport()
	c.drag = drag{}
}

// ZoomAt multiplies zoom by factor, clamped to [MinZoom, MaxZoom], keeping
// the data under pointer fixed on screen. It reports whether the state
// changed.
func (c *Controller) ZoomAt(factor float64, pointer r2.Point) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	z := transform.ClampZoom(c.state.Zoom)
	next := transform.ClampZoom(z * factor)
	if next == z {
		return false
	}

	// the viewport scales about the canvas center, so anchor in
	// center-relative coordinates
	q := pointer.Sub(c.canvas.Center())
	c.state.Pan = q.Sub(q.Sub(c.state.Pan).Mul(next / z))
	c.state.Zoom = next
	return true
}

// ZoomIn applies one zoom-in step at pointer
func (c *Controller) ZoomIn(pointer r2.Point) bool {
	return c.ZoomAt(ZoomInFactor, pointer)
}

// ZoomOut applies one zoom-out step at pointer
func (c *Controller) ZoomOut(pointer r2.Point) bool {
	return c.ZoomAt(ZoomOutFactor, pointer)
}

// Wheel zooms in for negative deltaY (wheel up) and out for positive
func (c *Controller) Wheel(deltaY float64, pointer r2.Point) bool {
	switch {
	case deltaY < 0:
		return c.ZoomIn(pointer)
	case deltaY > 0:
		return c.ZoomOut(pointer)
	}
	return false
}

// PointerDown starts a potential pan
func (c *Controller) PointerDown(p r2.Point) {
	c.drag = drag{active: true, start: p, startPan: c.state.Pan}
}

// PointerMove updates the pan once the pointer has travelled past
// PanThreshold. It reports whether the pan changed.
func (c *Controller) PointerMove(p r2.Point) bool {
	if !c.drag.active {
		return false
	}
	delta := p.Sub(c.drag.start)
	if !c.drag.panning {
		if delta.Norm() <= PanThreshold {
			return false
		}
		c.drag.panning = true
	}
	next := c.drag.startPan.Add(delta)
	if next == c.state.Pan {
		return false
	}
	c.state.Pan = next
	return true
}

// PointerUp ends the gesture
func (c *Controller) PointerUp(p r2.Point) Gesture {
	if !c.drag.active {
		return Gesture{Point: p}
	}
	c.PointerMove(p)
	g := Gesture{Click: !c.drag.panning, Panned: c.drag.panning, Point: p}
	c.drag = drag{}
	return g
}

// CancelDrag drops the current press without applying it
func (c *Controller) CancelDrag() {
	c.drag = drag{}
}

// Panning reports whether a drag has engaged
func (c *Controller) Panning() bool {
	return c.drag.panning
}

// Pipeline returns p with the controller's viewport and canvas applied
func (c *Controller) Pipeline(p transform.Pipeline) transform.Pipeline {
	p.Viewport = c.state
	p.Canvas = c.canvas
	return p
}
