package transform

import "github.com/golang/geo/r2"

// Pipeline bundles everything needed to move a point between data space and
// the on-screen viewport.
type Pipeline struct {
	Frame     Frame
	Canvas    Size
	Alignment Alignment
	Viewport  Viewport
}

// NewPipeline creates a pipeline with identity alignment and viewport
func NewPipeline(frame Frame, canvas Size) Pipeline {
	return Pipeline{
		Frame:     frame,
		Canvas:    canvas,
		Alignment: Identity(),
		Viewport:  DefaultViewport(),
	}
}

func (p Pipeline) alignment() Alignment {
	if p.Alignment == nil {
		return Identity()
	}
	return p.Alignment
}

// Forward maps a data point to viewport space:
// DataToCanvas -> Alignment.Apply -> Viewport.Apply.
func (p Pipeline) Forward(d r2.Point) r2.Point {
	c := p.Frame.DataToCanvas(d, p.Canvas)
	a := p.alignment().Apply(c, p.Canvas)
	return p.Viewport.Apply(a, p.Canvas)
}

// Inverse maps a viewport point back to data space:
// Viewport.Invert -> Alignment.Invert -> CanvasToData.
func (p Pipeline) Inverse(s r2.Point) r2.Point {
	a := p.Viewport.Invert(s, p.Canvas)
	c := p.alignment().Invert(a, p.Canvas)
	return p.Frame.CanvasToData(c, p.Canvas)
}

// Corners returns the four canvas corners in viewport space
func (p Pipeline) Corners() [4]r2.Point {
	w, h := p.Canvas.W, p.Canvas.H
	return [4]r2.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: 0, Y: h}, {X: w, Y: h}}
}
