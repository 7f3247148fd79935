package raster

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

func squarePipeline() transform.Pipeline {
	bounds := r2.Rect{X: r1.Interval{Lo: 0, Hi: 100}, Y: r1.Interval{Lo: 0, Hi: 100}}
	return transform.NewPipeline(transform.NewFrame(bounds), transform.Size{W: 100, H: 100})
}

func TestRampStops(t *testing.T) {
	tests := []struct {
		in   float64
		want color.NRGBA
	}{
		{0, color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
		{0.25, color.NRGBA{R: 0, G: 255, B: 255, A: 255}},
		{0.5, color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
		{0.75, color.NRGBA{R: 255, G: 255, B: 0, A: 255}},
		{1, color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
		{-3, color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
		{7, color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ramp(tt.in), "t=%v", tt.in)
	}
}

func TestRampInterpolates(t *testing.T) {
	c := Ramp(0.125)
	assert.Equal(t, uint8(0), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(255), c.B)
}

func TestGaussianKernel(t *testing.T) {
	assert.Equal(t, []float32{1}, GaussianKernel(0))

	k := GaussianKernel(2)
	require.Len(t, k, 13)
	var sum float32
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-5)
	assert.Equal(t, k[0], k[len(k)-1])
	assert.Greater(t, k[6], k[5])
}

func TestBlurPreservesMass(t *testing.T) {
	f := NewField(64, 64)
	f.Data[32*64+32] = 1

	out := Blur(f, 2)
	var sum float32
	for _, v := range out.Data {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-4)
	assert.Less(t, out.At(32, 32), float32(1))
	assert.Equal(t, float32(1), f.At(32, 32), "source field must not be modified")
}

func TestAccumulateMonotonic(t *testing.T) {
	p := squarePipeline()
	at := r2.Point{X: 40, Y: 60}

	prev := Accumulate(Tracks{}, p, DefaultOptions(), Range{})
	for n := 1; n <= 6; n++ {
		points := make([]r2.Point, n)
		for i := range points {
			points[i] = at
		}
		cur := Accumulate(Tracks{Points: points}, p, DefaultOptions(), Range{})
		for i := range cur.Data {
			require.GreaterOrEqual(t, cur.Data[i], prev.Data[i])
		}
		prev = cur
	}
	assert.Greater(t, prev.At(40, 40), float32(0))
}

func TestAccumulateScalesRadiusWithZoom(t *testing.T) {
	p := squarePipeline()
	samples := Tracks{Points: []r2.Point{{X: 50, Y: 50}}}

	covered := func(f *Field) int {
		n := 0
		for _, v := range f.Data {
			if v > 0 {
				n++
			}
		}
		return n
	}

	base := covered(Accumulate(samples, p, DefaultOptions(), Range{}))
	p.Viewport.Zoom = 2
	zoomed := covered(Accumulate(samples, p, DefaultOptions(), Range{}))
	assert.Greater(t, zoomed, base*3)
}

func TestRenderTracksAutoRange(t *testing.T) {
	p := squarePipeline()
	layer := Render(Tracks{Points: []r2.Point{{X: 50, Y: 50}}}, p, AutoScale(), DefaultOptions())

	require.NotNil(t, layer.Image)
	assert.Equal(t, 100, layer.Image.Bounds().Dx())
	assert.True(t, layer.Auto)
	assert.Equal(t, 0.0, layer.Range.Min)
	assert.InDelta(t, layer.Peak*DefaultOptions().CountPerIntensity(), layer.Range.Max, 1e-9)

	peak := layer.Image.NRGBAAt(49, 49)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, peak)
	assert.True(t, Transparent(layer.Image.NRGBAAt(0, 0)))
}

func TestRenderEmptyIsTransparent(t *testing.T) {
	layer := Render(Tracks{}, squarePipeline(), AutoScale(), DefaultOptions())
	for i := 3; i < len(layer.Image.Pix); i += 4 {
		require.Zero(t, layer.Image.Pix[i])
	}
	assert.Equal(t, Range{}, layer.Range)
}

func TestRenderTracksManualRange(t *testing.T) {
	manual := Range{Min: 0, Max: 1000}
	layer := Render(Tracks{Points: []r2.Point{{X: 50, Y: 50}}}, squarePipeline(), Scale{Manual: manual}, DefaultOptions())

	assert.False(t, layer.Auto)
	assert.Equal(t, manual, layer.Range)
	// one point is far below a 1000-count ceiling
	assert.True(t, Transparent(layer.Image.NRGBAAt(49, 49)))
}

func TestRenderDwell(t *testing.T) {
	cells := Dwell{Cells: []Cell{
		{X: 20, Y: 20, Value: 10},
		{X: 80, Y: 80, Value: 110},
	}}
	layer := Render(cells, squarePipeline(), AutoScale(), DefaultOptions())

	assert.Equal(t, Range{Min: 10, Max: 110}, layer.Range)
	low, high := layer.Image.NRGBAAt(19, 79), layer.Image.NRGBAAt(79, 19)
	assert.NotZero(t, low.A, "the minimum-valued cell still shows")
	assert.Greater(t, high.A, low.A)

	manual := Range{Min: 0, Max: 220}
	layer = Render(cells, squarePipeline(), Scale{Manual: manual}, DefaultOptions())
	assert.Equal(t, manual, layer.Range)
	assert.NotZero(t, layer.Image.NRGBAAt(19, 79).A)
}

func TestRenderDwellFlatRange(t *testing.T) {
	tests := []struct {
		name  string
		cells []Cell
		want  Range
	}{
		{"single cell", []Cell{{X: 50, Y: 50, Value: 120}}, Range{Min: 120, Max: 120}},
		{"uniform values", []Cell{{X: 20, Y: 20, Value: 60}, {X: 80, Y: 80, Value: 60}}, Range{Min: 60, Max: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := squarePipeline()
			layer := Render(Dwell{Cells: tt.cells}, p, AutoScale(), DefaultOptions())
			assert.Equal(t, tt.want, layer.Range)
			for _, c := range tt.cells {
				at := p.Forward(c.Point())
				px := layer.Image.NRGBAAt(int(at.X), int(at.Y))
				assert.NotZero(t, px.A, "cell at %v", at)
			}
		})
	}
}

func TestCellWeight(t *testing.T) {
	r := Range{Min: 10, Max: 110}
	assert.Equal(t, 1.0, cellWeight(r, 110))
	assert.Equal(t, 0.5, cellWeight(r, 60))
	assert.Equal(t, MinCellWeight, cellWeight(r, 10))
	assert.Zero(t, cellWeight(r, 5), "below a manual minimum")
	assert.Equal(t, 1.0, cellWeight(Range{Min: 7, Max: 7}, 7))
	assert.Zero(t, cellWeight(Range{Min: 7, Max: 7}, 6))
}

func TestRangeNormalize(t *testing.T) {
	r := Range{Min: 10, Max: 20}
	assert.Equal(t, 0.5, r.Normalize(15))
	assert.Equal(t, 0.0, r.Normalize(0))
	assert.Equal(t, 1.0, r.Normalize(99))
	assert.Equal(t, 1.0, Range{Min: 5, Max: 5}.Span())
}
