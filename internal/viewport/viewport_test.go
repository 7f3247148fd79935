package viewport

import (
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

var canvas = transform.Size{W: 800, H: 600}

func pipeline() transform.Pipeline {
	bounds := r2.Rect{X: r1.Interval{Lo: 0, Hi: 100}, Y: r1.Interval{Lo: 0, Hi: 100}}
	return transform.NewPipeline(transform.NewFrame(bounds), canvas)
}

func TestZoomAtKeepsPointerAnchored(t *testing.T) {
	c := New(canvas)
	pointer := r2.Point{X: 130, Y: 470}

	before := c.State().Invert(pointer, canvas)
	require.True(t, c.ZoomIn(pointer))
	require.True(t, c.ZoomAt(3, pointer))
	after := c.State().Invert(pointer, canvas)

	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 3.3, c.State().Zoom, 1e-9)

	// zooming out at a different point keeps that point anchored too
	other := r2.Point{X: 700, Y: 20}
	before = c.State().Invert(other, canvas)
	require.True(t, c.ZoomOut(other))
	after = c.State().Invert(other, canvas)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomAtCenterKeepsPan(t *testing.T) {
	c := New(canvas)
	c.ZoomAt(2, canvas.Center())
	assert.Equal(t, r2.Point{}, c.State().Pan)
	assert.Equal(t, 2.0, c.State().Zoom)
}

func TestZoomClamp(t *testing.T) {
	c := New(canvas)
	for i := 0; i < 100; i++ {
		c.ZoomIn(r2.Point{X: 10, Y: 10})
	}
	assert.Equal(t, transform.MaxZoom, c.State().Zoom)
	assert.False(t, c.ZoomIn(r2.Point{}))

	for i := 0; i < 100; i++ {
		c.Wheel(1, r2.Point{X: 10, Y: 10})
	}
	assert.Equal(t, transform.MinZoom, c.State().Zoom)
	assert.False(t, c.Wheel(1, r2.Point{}))
	assert.False(t, c.ZoomAt(0, r2.Point{}))
}

func TestClickBelowThreshold(t *testing.T) {
	c := New(canvas)
	c.PointerDown(r2.Point{X: 100, Y: 100})
	assert.False(t, c.PointerMove(r2.Point{X: 105, Y: 104}))
	assert.False(t, c.Panning())

	g := c.PointerUp(r2.Point{X: 106, Y: 100})
	assert.True(t, g.Click)
	assert.False(t, g.Panned)
	assert.Equal(t, r2.Point{}, c.State().Pan)
}

func TestDragPans(t *testing.T) {
	c := New(canvas)
	c.SetState(transform.Viewport{Zoom: 2, Pan: r2.Point{X: 10, Y: 10}})

	c.PointerDown(r2.Point{X: 100, Y: 100})
	assert.True(t, c.PointerMove(r2.Point{X: 120, Y: 90}))
	assert.True(t, c.Panning())
	assert.Equal(t, r2.Point{X: 30, Y: 0}, c.State().Pan)

	g := c.PointerUp(r2.Point{X: 130, Y: 90})
	assert.False(t, g.Click)
	assert.True(t, g.Panned)
	assert.Equal(t, r2.Point{X: 40, Y: 0}, c.State().Pan)
	assert.False(t, c.PointerMove(r2.Point{X: 500, Y: 500}), "move after release must not pan")
}

func TestReset(t *testing.T) {
	c := New(canvas)
	c.ZoomAt(4, r2.Point{X: 1, Y: 2})
	c.PointerDown(r2.Point{})
	c.Reset()
	assert.True(t, c.State().IsIdentity())
	assert.False(t, c.Panning())
}

func TestVisibleSkippedWhenUnzoomed(t *testing.T) {
	_, ok := Visible(pipeline(), raster.Tracks{Points: []r2.Point{{X: 1, Y: 1}}})
	assert.False(t, ok)
}

func TestVisibleStatistic(t *testing.T) {
	c := New(canvas)
	c.ZoomAt(2, canvas.Center())
	p := c.Pipeline(pipeline())

	box := VisibleBounds(p)
	assert.InDelta(t, 25, box.X.Lo, 1e-9)
	assert.InDelta(t, 75, box.X.Hi, 1e-9)
	assert.InDelta(t, 25, box.Y.Lo, 1e-9)
	assert.InDelta(t, 75, box.Y.Hi, 1e-9)

	samples := raster.Tracks{Points: []r2.Point{{X: 50, Y: 50}, {X: 10, Y: 10}, {X: 30, Y: 70}, {X: 90, Y: 50}}}
	v, ok := Visible(p, samples)
	require.True(t, ok)
	assert.Equal(t, Visibility{InView: 2, Total: 4, Percentage: 50}, v)
}

func TestVisiblePanOnly(t *testing.T) {
	p := pipeline()
	p.Viewport.Pan = r2.Point{X: 400}

	cells := raster.Dwell{Cells: []raster.Cell{{X: 10, Y: 50, Value: 3}, {X: 90, Y: 50, Value: 1}}}
	v, ok := Visible(p, cells)
	require.True(t, ok)
	assert.Equal(t, 1, v.InView)
	assert.Equal(t, 2, v.Total)
}
