package transform

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r2"
)

// Zoom limits
const (
	MinZoom = 0.5
	MaxZoom = 10.0
)

// Viewport is the zoom/pan state applied on top of the aligned canvas
type Viewport struct {
	Zoom float64
	Pan  r2.Point
}

type viewportJSON struct {
	Zoom float64 `json:"zoom"`
	Pan  struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"pan"`
}

// MarshalJSON encodes the viewport as {"zoom", "pan": {"x", "y"}}
func (v Viewport) MarshalJSON() ([]byte, error) {
	var w viewportJSON
	w.Zoom = v.Zoom
	w.Pan.X, w.Pan.Y = v.Pan.X, v.Pan.Y
	return json.Marshal(w)
}

// UnmarshalJSON decodes the form written by MarshalJSON
func (v *Viewport) UnmarshalJSON(data []byte) error {
	var w viewportJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v.Zoom = w.Zoom
	v.Pan = r2.Point{X: w.Pan.X, Y: w.Pan.Y}
	return nil
}

// DefaultViewport returns the unzoomed, unpanned viewport
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ClampZoom limits z to [MinZoom, MaxZoom]
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// IsIdentity reports whether the viewport is unzoomed and unpanned
func (v Viewport) IsIdentity() bool {
	return v.Zoom == 1 && v.Pan.X == 0 && v.Pan.Y == 0
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 || math.IsNaN(v.Zoom) {
		return 1
	}
	return v.Zoom
}

// Apply scales p about the canvas center by the zoom, then adds the pan
func (v Viewport) Apply(p r2.Point, canvas Size) r2.Point {
	c := canvas.Center()
	return p.Sub(c).Mul(v.zoom()).Add(c).Add(v.Pan)
}

// Invert removes the pan, then divides out the zoom about the canvas center
func (v Viewport) Invert(p r2.Point, canvas Size) r2.Point {
	c := canvas.Center()
	return p.Sub(v.Pan).Sub(c).Mul(1 / v.zoom()).Add(c)
}
