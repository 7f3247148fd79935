package viewport

import (
	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/spatial"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// Visibility is the visible-region statistic
type Visibility struct {
	InView     int     `json:"in_view"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// VisibleBounds returns the data-space box currently on screen: the bounding
// box of the four canvas corners run through the inverse pipeline.
func VisibleBounds(p transform.Pipeline) r2.Rect {
	corners := p.Corners()
	points := make([]r2.Point, 0, len(corners))
	for _, c := range corners {
		points = append(points, p.Inverse(c))
	}
	return spatial.BoundingBox(points)
}

// Visible counts the samples inside VisibleBounds. The second result is
// false when the viewport is unzoomed and unpanned; callers then treat the
// whole dataset as visible and nothing is computed.
func Visible(p transform.Pipeline, samples raster.Samples) (Visibility, bool) {
	if p.Viewport.IsIdentity() {
		return Visibility{}, false
	}
	v := Visibility{}
	if samples == nil {
		return v, true
	}

	box := VisibleBounds(p)
	for _, pt := range samples.Positions() {
		v.Total++
		if box.ContainsPoint(pt) {
			v.InView++
		}
	}
	if v.Total > 0 {
		v.Percentage = float64(v.InView) / float64(v.Total) * 100
	}
	return v, true
}
