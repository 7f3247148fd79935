package raster

import (
	"math"

	"github.com/golang/geo/r2"
)

// Field is a single-channel intensity buffer. Values accumulate without
// clamping; clamping happens only when the field is colorized.
type Field struct {
	W, H int
	Data []float32
}

// NewField creates a zeroed w x h field
func NewField(w, h int) *Field {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Field{W: w, H: h, Data: make([]float32, w*h)}
}

// At returns the intensity at (x, y), or 0 outside the field
func (f *Field) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return 0
	}
	return f.Data[y*f.W+x]
}

// Max returns the peak intensity
func (f *Field) Max() float32 {
	var m float32
	for _, v := range f.Data {
		if v > m {
			m = v
		}
	}
	return m
}

// Splat adds a radial falloff centered at c: weight at the center, falling
// linearly to zero at radius. Pixel centers are sampled at +0.5.
func (f *Field) Splat(c r2.Point, radius, weight float64) {
	if weight <= 0 || math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return
	}
	if radius < 1 {
		radius = 1
	}

	x0 := int(math.Floor(c.X - radius))
	x1 := int(math.Ceil(c.X + radius))
	y0 := int(math.Floor(c.Y - radius))
	y1 := int(math.Ceil(c.Y + radius))
	if x1 < 0 || y1 < 0 || x0 >= f.W || y0 >= f.H {
		return
	}
	x0, x1 = max(x0, 0), min(x1, f.W-1)
	y0, y1 = max(y0, 0), min(y1, f.H-1)

	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - c.Y
		row := y * f.W
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - c.X
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= radius {
				continue
			}
			f.Data[row+x] += float32(weight * (1 - d/radius))
		}
	}
}
