package models

import "github.com/jengzang/floorheat-backend-go/internal/stats"

// GridCell is one snapped aggregation cell of raw positions
type GridCell struct {
	X              float64 `json:"x" db:"x"` // cell centre
	Y              float64 `json:"y" db:"y"`
	TrackCount     int64   `json:"track_count" db:"track_count"`
	UniqueVisitors int64   `json:"unique_visitors" db:"unique_visitors"`
}

// GridResponse holds grid cells for a store floor
type GridResponse struct {
	Cells    []GridCell `json:"cells"`
	GridSize float64    `json:"grid_size"`
	Bounds   Bounds     `json:"bounds"`
	MaxCount int64      `json:"max_count"`
}

// GridFilter selects grid aggregation parameters
type GridFilter struct {
	TimeFilter
	GridSize float64 `form:"grid_size"`
}

// DwellCell is one grid cell of dwell aggregation
type DwellCell struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	TotalDwellSeconds int64   `json:"total_dwell_seconds"`
	AvgDwellSeconds   float64 `json:"avg_dwell_seconds"`
	VisitCount        int64   `json:"visit_count"`
	UniqueVisitors    int64   `json:"unique_visitors"`
	Intensity         float64 `json:"intensity"` // total dwell relative to the busiest cell
}

// DwellResponse is the dwell dataset for a store floor
type DwellResponse struct {
	Cells          []DwellCell   `json:"cells"`
	GridSize       float64       `json:"grid_size"`
	Bounds         Bounds        `json:"bounds"`
	TotalDwellTime int64         `json:"total_dwell_time"`
	AvgDwellTime   float64       `json:"avg_dwell_time"`
	TotalEvents    int64         `json:"total_events"`
	Durations      stats.Summary `json:"duration_summary"`
}
