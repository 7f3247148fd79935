// Package raster turns sample points or aggregated cells into a colorized
// density image.
package raster

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/spatial"
)

// Cell is a pre-aggregated grid cell in data space carrying a scalar value,
// such as average dwell seconds.
type Cell struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// Point returns the cell center
func (c Cell) Point() r2.Point {
	return r2.Point{X: c.X, Y: c.Y}
}

// Mode names
const (
	ModeTracks = "tracks"
	ModeDwell  = "dwell"
)

// Samples is the rasterizer input: either Tracks (unit-weight points) or
// Dwell (valued cells).
type Samples interface {
	Mode() string
	Len() int
	// Positions returns the data-space position of every sample
	Positions() []r2.Point
	// Bounds returns the data-space bounding box, empty when there is no data
	Bounds() r2.Rect

	isSamples()
}

// Tracks holds raw sample points, each contributing equal weight
type Tracks struct {
	Points []r2.Point
}

func (Tracks) isSamples() {}

// Mode implements Samples
func (Tracks) Mode() string { return ModeTracks }

// Len implements Samples
func (t Tracks) Len() int { return len(t.Points) }

// Positions implements Samples
func (t Tracks) Positions() []r2.Point { return t.Points }

// Bounds implements Samples
func (t Tracks) Bounds() r2.Rect { return spatial.BoundingBox(t.Points) }

// Dwell holds aggregated cells, each contributing its own value
type Dwell struct {
	Cells []Cell
}

func (Dwell) isSamples() {}

// Mode implements Samples
func (Dwell) Mode() string { return ModeDwell }

// Len implements Samples
func (d Dwell) Len() int { return len(d.Cells) }

// Positions implements Samples
func (d Dwell) Positions() []r2.Point {
	points := make([]r2.Point, len(d.Cells))
	for i, c := range d.Cells {
		points[i] = c.Point()
	}
	return points
}

// Bounds implements Samples
func (d Dwell) Bounds() r2.Rect { return spatial.BoundingBox(d.Positions()) }

// ValueRange returns the min and max cell value, or a zero range when empty
func (d Dwell) ValueRange() Range {
	if len(d.Cells) == 0 {
		return Range{}
	}
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, c := range d.Cells {
		r.Min = math.Min(r.Min, c.Value)
		r.Max = math.Max(r.Max, c.Value)
	}
	return r
}
