package zone

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/geo/r2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay colors
var (
	outlineColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
	selectedColor = color.NRGBA{R: 255, G: 200, B: 0, A: 255}
	fillColor     = color.NRGBA{R: 255, G: 255, B: 255, A: 40}
	labelColor    = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	labelBack     = color.NRGBA{R: 255, G: 255, B: 255, A: 200}
)

const strokeWidth = 2

// Draw paints zone boxes onto dst: a translucent fill, an outline and a
// label in the top-left corner. labels maps zone ids to extra text (for
// example visitor counts) appended after the zone name.
func Draw(dst draw.Image, zones []Projected, selected Selection, labels map[int64]string) {
	for _, pz := range zones {
		r := pixelRect(pz.Box).Intersect(dst.Bounds())
		if r.Empty() {
			continue
		}

		stroke := outlineColor
		if selected[pz.Zone.ID] {
			stroke = selectedColor
		}
		draw.Draw(dst, r, image.NewUniform(fillColor), image.Point{}, draw.Over)
		outline(dst, r, stroke)

		text := pz.Zone.Name
		if extra, ok := labels[pz.Zone.ID]; ok && extra != "" {
			text += " " + extra
		}
		label(dst, r.Min, text)
	}
}

func pixelRect(b r2.Rect) image.Rectangle {
	if b.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(b.X.Lo)), int(math.Floor(b.Y.Lo)),
		int(math.Ceil(b.X.Hi)), int(math.Ceil(b.Y.Hi)),
	)
}

func outline(dst draw.Image, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	w := min(strokeWidth, r.Dx(), r.Dy())
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Over)
	}
}

func label(dst draw.Image, at image.Point, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(labelColor), Face: face}

	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	pad := 3

	back := image.Rect(at.X, at.Y, at.X+width+2*pad, at.Y+height+2*pad)
	draw.Draw(dst, back, image.NewUniform(labelBack), image.Point{}, draw.Over)

	d.Dot = fixed.P(at.X+pad, at.Y+pad+metrics.Ascent.Ceil())
	d.DrawString(text)
}
