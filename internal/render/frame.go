package render

import (
	"image"

	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
	"github.com/jengzang/floorheat-backend-go/internal/viewport"
	"github.com/jengzang/floorheat-backend-go/internal/zone"
)

// Frame is one rendered output
type Frame struct {
	Generation uint64
	Layer      raster.Layer
	Image      *image.NRGBA
	Visible    viewport.Visibility
	// HasVisible is false when the view is unzoomed and the statistic was
	// skipped
	HasVisible bool
}

// Job is an immutable snapshot of the scene inputs for one frame
type Job struct {
	generation uint64
	input      Input
	pipeline   transform.Pipeline
	selected   zone.Selection
}

// Prepare snapshots the current inputs. The job may run on another
// goroutine; the scene must not be touched from there.
func (s *Scene) Prepare() Job {
	sel := make(zone.Selection, len(s.selection))
	for id := range s.selection {
		sel[id] = true
	}
	return Job{
		generation: s.generation,
		input:      s.input,
		pipeline:   s.Pipeline(),
		selected:   sel,
	}
}

// Generation returns the input generation the job was prepared from
func (j Job) Generation() uint64 {
	return j.generation
}

// Run builds the frame. It only reads the snapshot.
func (j Job) Run() Frame {
	in := j.input
	layer := raster.Render(in.Samples, j.pipeline, in.Scale, in.Options)
	vis, ok := viewport.Visible(j.pipeline, in.Samples)

	var zones []zone.Projected
	if len(in.Zones) > 0 {
		zones = zone.ProjectAll(in.Zones, j.pipeline)
	}
	img := Compose(j.pipeline.Canvas, j.pipeline.Viewport, in.Underlay, layer.Image, zones, j.selected, in.Labels)

	return Frame{
		Generation: j.generation,
		Layer:      layer,
		Image:      img,
		Visible:    vis,
		HasVisible: ok,
	}
}

// Accept installs f if it belongs to the latest generation and then runs
// the derived-state step, which reports range and visibility changes. A
// stale frame is discarded and false is returned.
func (s *Scene) Accept(f Frame) bool {
	if f.Generation != s.generation {
		return false
	}
	s.current = &f
	s.settle(f)
	return true
}

// settle reports derived outputs at most once per distinct value. Reports
// never modify the scene inputs, so they cannot trigger another render.
func (s *Scene) settle(f Frame) {
	if f.Layer.Auto {
		r := f.Layer.Range
		if s.reportedRange == nil || *s.reportedRange != r {
			s.reportedRange = &r
			if s.hooks.OnRangeChange != nil {
				s.hooks.OnRangeChange(r)
			}
		}
	}

	rep := visibleReport{v: f.Visible, ok: f.HasVisible}
	if s.reportedVisible == nil || *s.reportedVisible != rep {
		first := s.reportedVisible == nil
		s.reportedVisible = &rep
		// the unzoomed initial state has nothing to announce
		if !(first && !rep.ok) && s.hooks.OnVisibleChange != nil {
			s.hooks.OnVisibleChange(rep.v, rep.ok)
		}
	}
}

// Render prepares, runs and accepts a frame synchronously
func (s *Scene) Render() Frame {
	f := s.Prepare().Run()
	s.Accept(f)
	return f
}

// Current returns the last accepted frame, if any
func (s *Scene) Current() (Frame, bool) {
	if s.current == nil {
		return Frame{}, false
	}
	return *s.current, true
}

// Fresh reports whether the last accepted frame matches the current inputs
func (s *Scene) Fresh() bool {
	return s.current != nil && s.current.Generation == s.generation
}
