package models

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Bounds is the wire form of a data rectangle. All zeros means no data.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// BoundsOf converts r, reporting an empty rectangle as zeros
func BoundsOf(r r2.Rect) Bounds {
	if r.IsEmpty() {
		return Bounds{}
	}
	return Bounds{MinX: r.X.Lo, MaxX: r.X.Hi, MinY: r.Y.Lo, MaxY: r.Y.Hi}
}

// Rect converts back to r2
func (b Bounds) Rect() r2.Rect {
	return r2.Rect{X: r1.Interval{Lo: b.MinX, Hi: b.MaxX}, Y: r1.Interval{Lo: b.MinY, Hi: b.MaxY}}
}

// IsZero reports whether b carries no data
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// HeatmapPoint is one raw position with the floor-plan offset applied
type HeatmapPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeatmapResponse is the raw dataset for one store floor
type HeatmapResponse struct {
	Points              []HeatmapPoint `json:"points"`
	Bounds              Bounds         `json:"bounds"`
	TotalReturned       int            `json:"total_returned"`
	TotalInDatabase     int64          `json:"total_in_database"`
	TotalUniqueVisitors int64          `json:"total_unique_visitors"`
	TotalVisitorDays    int64          `json:"total_visitor_days"`
	Sampled             bool           `json:"sampled"`
}

// Totals are the row and visitor counts for a filter
type Totals struct {
	Tracks         int64 `json:"total_in_database"`
	UniqueVisitors int64 `json:"total_unique_visitors"`
	VisitorDays    int64 `json:"total_visitor_days"`
}

// HeatmapSettings echoes the server-side defaults the client needs
type HeatmapSettings struct {
	GridSize              float64 `json:"grid_size"`
	DwellSpatialThreshold float64 `json:"dwell_spatial_threshold"`
	DwellMinTime          int64   `json:"dwell_min_time"`
	MaxRawPoints          int     `json:"max_raw_points"`
}

// RenderInfo describes a rendered PNG. The same values are sent as headers.
type RenderInfo struct {
	ScaleMin   float64  `json:"scale_min"`
	ScaleMax   float64  `json:"scale_max"`
	AutoScale  bool     `json:"auto_scale"`
	Visible    *Visible `json:"visible,omitempty"`
	Generation uint64   `json:"generation"`
}

// Visible is the share of the dataset inside the current view
type Visible struct {
	InView     int     `json:"in_view"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
