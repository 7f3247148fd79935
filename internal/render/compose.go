package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
	"github.com/jengzang/floorheat-backend-go/internal/zone"
)

// Background fills the canvas when no floor plan is available
var Background = color.NRGBA{R: 24, G: 24, B: 32, A: 255}

// UnderlayMatrix maps floor-plan image pixels to viewport pixels: the image
// is stretched over the canvas, then zoomed about the canvas center and
// panned like everything else on screen.
func UnderlayMatrix(img image.Rectangle, canvas transform.Size, v transform.Viewport) f64.Aff3 {
	sx, sy := 1.0, 1.0
	if img.Dx() > 0 {
		sx = canvas.W / float64(img.Dx())
	}
	if img.Dy() > 0 {
		sy = canvas.H / float64(img.Dy())
	}
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	c := canvas.Center()
	// image origin may be non-zero
	ox, oy := float64(img.Min.X), float64(img.Min.Y)
	return f64.Aff3{
		z * sx, 0, c.X*(1-z) + v.Pan.X - z*sx*ox,
		0, z * sy, c.Y*(1-z) + v.Pan.Y - z*sy*oy,
	}
}

// Compose layers the floor-plan underlay, the heat layer and the zone
// overlay into a new image the size of the canvas. Any input may be nil.
func Compose(canvas transform.Size, v transform.Viewport, underlay image.Image, heat image.Image, zones []zone.Projected, selected zone.Selection, labels map[int64]string) *image.NRGBA {
	bounds := image.Rect(0, 0, int(canvas.W+0.5), int(canvas.H+0.5))
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(Background), image.Point{}, draw.Src)

	if underlay != nil && !underlay.Bounds().Empty() {
		m := UnderlayMatrix(underlay.Bounds(), canvas, v)
		draw.BiLinear.Transform(dst, m, underlay, underlay.Bounds(), draw.Over, nil)
	}
	if heat != nil {
		draw.Draw(dst, bounds, heat, heat.Bounds().Min, draw.Over)
	}
	if len(zones) > 0 {
		zone.Draw(dst, zones, selected, labels)
	}
	return dst
}
