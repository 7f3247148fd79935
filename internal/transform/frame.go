// Package transform maps positions between data space (planar meters),
// canvas pixel space and the zoomed/panned viewport.
//
// The forward chain is always Frame.DataToCanvas, then Alignment.Apply, then
// Viewport.Apply. Pipeline.Inverse undoes the steps in exactly the reverse
// order; any other composition breaks round trips.
package transform

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/spatial"
)

// FrameMargin is the fraction added on each side of the data bounds when a
// frame is derived from data rather than from a calibrated floor plan.
const FrameMargin = 0.05

// Size is a canvas size in pixels.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Center returns the canvas center point
func (s Size) Center() r2.Point {
	return r2.Point{X: s.W / 2, Y: s.H / 2}
}

// Frame is the reference frame ("virtual floor plan"): the rectangle of data
// space that maps onto the full canvas at zoom 1. Values are immutable; build
// a new Frame whenever the floor plan or the data bounds change.
type Frame struct {
	rect r2.Rect
}

// UnitFrame returns the default [0,1]x[0,1] frame used when no usable
// bounds exist.
func UnitFrame() Frame {
	return Frame{rect: r2.Rect{X: r1.Interval{Lo: 0, Hi: 1}, Y: r1.Interval{Lo: 0, Hi: 1}}}
}

// NewFrame maps the given bounds exactly onto the canvas. This is the form
// used for a calibrated floor plan.
func NewFrame(bounds r2.Rect) Frame {
	return Frame{rect: sanitize(bounds)}
}

// FrameFromData derives a frame from raw data bounds expanded by FrameMargin
// on every side.
func FrameFromData(bounds r2.Rect) Frame {
	rect := sanitize(bounds)
	size := rect.Size()
	return Frame{rect: rect.Expanded(r2.Point{X: size.X * FrameMargin, Y: size.Y * FrameMargin})}
}

// sanitize replaces unusable bounds: empty or non-finite bounds become the
// unit square, a zero-extent axis is padded by half a unit on each side.
func sanitize(bounds r2.Rect) r2.Rect {
	if !spatial.IsFinite(bounds) {
		return UnitFrame().rect
	}
	if bounds.X.Length() == 0 {
		bounds.X = r1.Interval{Lo: bounds.X.Lo - 0.5, Hi: bounds.X.Hi + 0.5}
	}
	if bounds.Y.Length() == 0 {
		bounds.Y = r1.Interval{Lo: bounds.Y.Lo - 0.5, Hi: bounds.Y.Hi + 0.5}
	}
	return bounds
}

// Bounds returns the data-space rectangle covered by the frame
func (f Frame) Bounds() r2.Rect {
	if f.rect.X.Length() <= 0 || f.rect.Y.Length() <= 0 {
		return UnitFrame().rect
	}
	return f.rect
}

// DataToCanvas normalizes p into [0,1]x[0,1] over the frame and scales it to
// the canvas. The vertical axis is flipped: data "up" is smaller canvas y.
func (f Frame) DataToCanvas(p r2.Point, canvas Size) r2.Point {
	b := f.Bounds()
	nx := (p.X - b.X.Lo) / b.X.Length()
	ny := (p.Y - b.Y.Lo) / b.Y.Length()
	return r2.Point{X: nx * canvas.W, Y: (1 - ny) * canvas.H}
}

// CanvasToData is the exact inverse of DataToCanvas. A zero canvas
// dimension maps to the frame's lower edge on that axis.
func (f Frame) CanvasToData(p r2.Point, canvas Size) r2.Point {
	b := f.Bounds()
	var nx, ny float64
	if canvas.W != 0 {
		nx = p.X / canvas.W
	}
	if canvas.H != 0 {
		ny = 1 - p.Y/canvas.H
	}
	return r2.Point{X: b.X.Lo + nx*b.X.Length(), Y: b.Y.Lo + ny*b.Y.Length()}
}
