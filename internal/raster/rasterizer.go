package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// Range is a display value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max-Min, or 1 when the range is empty or inverted so that
// normalization never divides by zero.
func (r Range) Span() float64 {
	s := r.Max - r.Min
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	return s
}

// Normalize maps v into [0,1] against the range
func (r Range) Normalize(v float64) float64 {
	return clamp01((v - r.Min) / r.Span())
}

// Scale selects between an auto-detected and an operator-supplied range
type Scale struct {
	Auto   bool  `json:"auto" yaml:"auto"`
	Manual Range `json:"manual" yaml:"manual"`
}

// AutoScale is the default scale setting
func AutoScale() Scale {
	return Scale{Auto: true}
}

// Options tunes the rasterizer. Radii are in canvas pixels at zoom 1.
type Options struct {
	PointRadius float64 `yaml:"point_radius"`
	PointAlpha  float64 `yaml:"point_alpha"`
	CellRadius  float64 `yaml:"cell_radius"`
	BlurRadius  float64 `yaml:"blur_radius"`
	// Threshold is the normalized intensity below which pixels stay transparent
	Threshold float64 `yaml:"threshold"`
	// OpaqueAt is the normalized intensity at which alpha reaches 255
	OpaqueAt float64 `yaml:"opaque_at"`
}

// DefaultOptions returns the stock rasterizer settings
func DefaultOptions() Options {
	return Options{
		PointRadius: 10,
		PointAlpha:  0.05,
		CellRadius:  18,
		BlurRadius:  5,
		Threshold:   0.02,
		OpaqueAt:    0.7,
	}
}

// CountPerIntensity converts a raw intensity into an estimated point count:
// one point contributes PointAlpha at its center.
func (o Options) CountPerIntensity() float64 {
	if o.PointAlpha <= 0 {
		return 1
	}
	return 1 / o.PointAlpha
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PointRadius <= 0 {
		o.PointRadius = d.PointRadius
	}
	if o.PointAlpha <= 0 {
		o.PointAlpha = d.PointAlpha
	}
	if o.CellRadius <= 0 {
		o.CellRadius = d.CellRadius
	}
	if o.BlurRadius < 0 {
		o.BlurRadius = 0
	}
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.OpaqueAt <= 0 {
		o.OpaqueAt = d.OpaqueAt
	}
	return o
}

// Layer is one rendered heat layer
type Layer struct {
	Image *image.NRGBA
	// Range is the effective display range used for normalization
	Range Range
	// Auto reports whether Range was detected rather than supplied
	Auto bool
	// Peak is the highest blurred intensity in the field
	Peak float64
}

// Render rasterizes samples through the pipeline into a colorized layer the
// size of the pipeline canvas. It has no side effects.
func Render(samples Samples, p transform.Pipeline, scale Scale, opts Options) Layer {
	opts = opts.withDefaults()
	w, h := canvasPixels(p.Canvas)

	if samples == nil {
		samples = Tracks{}
	}

	switch s := samples.(type) {
	case Dwell:
		rng := scale.Manual
		if scale.Auto {
			rng = s.ValueRange()
		}
		field := Blur(accumulateDwell(s, p, opts, rng, w, h), opts.BlurRadius)
		img := Colorize(field, func(v float32) float64 { return float64(v) }, opts)
		return Layer{Image: img, Range: rng, Auto: scale.Auto, Peak: float64(field.Max())}

	default:
		field := Blur(accumulateTracks(s, p, opts, w, h), opts.BlurRadius)
		peak := float64(field.Max())
		cpi := opts.CountPerIntensity()
		rng := scale.Manual
		if scale.Auto {
			rng = Range{Min: 0, Max: peak * cpi}
		}
		img := Colorize(field, func(v float32) float64 { return rng.Normalize(float64(v) * cpi) }, opts)
		return Layer{Image: img, Range: rng, Auto: scale.Auto, Peak: peak}
	}
}

// Accumulate builds the unblurred intensity field. Dwell cells are
// normalized against rng; tracks ignore it.
func Accumulate(samples Samples, p transform.Pipeline, opts Options, rng Range) *Field {
	opts = opts.withDefaults()
	w, h := canvasPixels(p.Canvas)
	switch s := samples.(type) {
	case Dwell:
		return accumulateDwell(s, p, opts, rng, w, h)
	case Tracks:
		return accumulateTracks(s, p, opts, w, h)
	default:
		return NewField(w, h)
	}
}

func accumulateTracks(s Samples, p transform.Pipeline, opts Options, w, h int) *Field {
	field := NewField(w, h)
	radius := opts.PointRadius * p.Viewport.Zoom
	for _, pt := range s.Positions() {
		field.Splat(p.Forward(pt), radius, opts.PointAlpha)
	}
	return field
}

func accumulateDwell(d Dwell, p transform.Pipeline, opts Options, rng Range, w, h int) *Field {
	field := NewField(w, h)
	radius := opts.CellRadius * p.Viewport.Zoom
	for _, c := range d.Cells {
		field.Splat(p.Forward(c.Point()), radius, cellWeight(rng, c.Value))
	}
	return field
}

// MinCellWeight is the splat weight of a dwell cell at the bottom of the
// range. It stays above the transparent cut-off after blurring.
const MinCellWeight = 0.1

// cellWeight maps a dwell value to its splat weight. Values below the range
// are dropped; a range with no extent gives every remaining cell full weight.
func cellWeight(rng Range, v float64) float64 {
	if math.IsNaN(v) || v < rng.Min {
		return 0
	}
	if !(rng.Max > rng.Min) {
		return 1
	}
	return math.Max(rng.Normalize(v), MinCellWeight)
}

// Colorize maps every field value through normalize and the heat ramp.
// Pixels below the threshold stay fully transparent.
func Colorize(field *Field, normalize func(float32) float64, opts Options) *image.NRGBA {
	opts = opts.withDefaults()
	img := image.NewNRGBA(image.Rect(0, 0, field.W, field.H))
	for y := 0; y < field.H; y++ {
		for x := 0; x < field.W; x++ {
			t := clamp01(normalize(field.Data[y*field.W+x]))
			if t < opts.Threshold {
				continue
			}
			c := Ramp(t)
			c.A = uint8(math.Round(255 * clamp01(t/opts.OpaqueAt)))
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Transparent reports whether the pixel carries no heat
func Transparent(c color.NRGBA) bool {
	return c.A == 0
}

func canvasPixels(s transform.Size) (int, int) {
	w, h := int(math.Round(s.W)), int(math.Round(s.H))
	if w < 0 || math.IsNaN(s.W) {
		w = 0
	}
	if h < 0 || math.IsNaN(s.H) {
		h = 0
	}
	return w, h
}
