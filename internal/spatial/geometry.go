package spatial

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// BoundingBox calculates the bounding box of a set of points.
// The result is empty (r2.EmptyRect) when points is empty.
func BoundingBox(points []r2.Point) r2.Rect {
	rect := r2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(p)
	}
	return rect
}

// RectFromCorners builds a rectangle from an unordered corner pair
func RectFromCorners(x1, y1, x2, y2 float64) r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: math.Min(x1, x2), Hi: math.Max(x1, x2)},
		Y: r1.Interval{Lo: math.Min(y1, y2), Hi: math.Max(y1, y2)},
	}
}

// PointInRectangle checks if a point is inside a rectangle given by two
// unordered corners. Edges count as inside.
func PointInRectangle(px, py, x1, y1, x2, y2 float64) bool {
	return RectFromCorners(x1, y1, x2, y2).ContainsPoint(r2.Point{X: px, Y: py})
}

// IsFinite reports whether the rectangle is non-empty and all of its
// coordinates are finite numbers.
func IsFinite(r r2.Rect) bool {
	if r.IsEmpty() {
		return false
	}
	for _, v := range []float64{r.X.Lo, r.X.Hi, r.Y.Lo, r.Y.Hi} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsFinitePoint reports whether both coordinates are finite
func IsFinitePoint(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// SnapToGrid snaps a value to the center of its grid cell
func SnapToGrid(value, gridSize float64) float64 {
	if gridSize <= 0 {
		return value
	}
	return math.Floor(value/gridSize)*gridSize + gridSize/2
}

// Distance calculates the planar Euclidean distance between two points
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
