package models

import "github.com/jengzang/floorheat-backend-go/internal/spatial"

// Zone is an axis-aligned rectangle in data space. The corner pair is
// unordered; min/max is taken when the zone is used.
type Zone struct {
	ID        int64   `json:"id" db:"id"`
	StoreID   int64   `json:"store_id" db:"store_id"`
	Floor     int     `json:"floor" db:"floor"`
	Name      string  `json:"name" db:"name"`
	X1        float64 `json:"x1" db:"x1"`
	Y1        float64 `json:"y1" db:"y1"`
	X2        float64 `json:"x2" db:"x2"`
	Y2        float64 `json:"y2" db:"y2"`
	CreatedAt string  `json:"created_at" db:"created_at"`
}

// Contains reports whether the data-space point lies inside the zone,
// edges included
func (z Zone) Contains(x, y float64) bool {
	return spatial.PointInRectangle(x, y, z.X1, z.Y1, z.X2, z.Y2)
}

// ZoneCreate is the request body for creating a zone
type ZoneCreate struct {
	StoreID int64   `json:"store_id" binding:"required"`
	Floor   int     `json:"floor"`
	Name    string  `json:"name" binding:"required"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
}

// ZoneUpdate is a partial update; nil fields are left unchanged
type ZoneUpdate struct {
	Name *string  `json:"name"`
	X1   *float64 `json:"x1"`
	Y1   *float64 `json:"y1"`
	X2   *float64 `json:"x2"`
	Y2   *float64 `json:"y2"`
}

// Apply copies the set fields onto z
func (u ZoneUpdate) Apply(z *Zone) {
	if u.Name != nil {
		z.Name = *u.Name
	}
	if u.X1 != nil {
		z.X1 = *u.X1
	}
	if u.Y1 != nil {
		z.Y1 = *u.Y1
	}
	if u.X2 != nil {
		z.X2 = *u.X2
	}
	if u.Y2 != nil {
		z.Y2 = *u.Y2
	}
}

// ZoneStats is the visitor statistic for one zone
type ZoneStats struct {
	ZoneID          int64    `json:"zone_id"`
	ZoneName        string   `json:"zone_name"`
	TrackCount      int64    `json:"track_count"`
	UniqueVisitors  int64    `json:"unique_visitors"`
	VisitorDays     int64    `json:"visitor_days"`
	AvgDwellSeconds *float64 `json:"avg_dwell_seconds,omitempty"`
}

// ZoneStatsRequest asks for statistics of several zones at once
type ZoneStatsRequest struct {
	StoreID      int64   `json:"store_id" binding:"required"`
	ZoneIDs      []int64 `json:"zone_ids"`
	IncludeDwell bool    `json:"include_dwell"`
	TimeFilter
}

// ZoneCoverage reports how many visitors entered at least one zone
type ZoneCoverage struct {
	TotalVisitors        int64   `json:"total_visitors"`
	VisitorsInZones      int64   `json:"visitors_in_zones"`
	VisitorsOutsideZones int64   `json:"visitors_outside_zones"`
	CoveragePct          float64 `json:"zone_coverage_pct"`
}

// TrackCompleteness is the distribution of how many zones each visitor
// passed through
type TrackCompleteness struct {
	TotalZones     int           `json:"total_zones"`
	TotalVisitors  int64         `json:"total_visitors"`
	Distribution   map[int]int64 `json:"distribution"`
	CompleteTracks int64         `json:"complete_tracks"`
	CompletePct    float64       `json:"complete_pct"`
	PartialTracks  int64         `json:"partial_tracks"`
	PartialPct     float64       `json:"partial_pct"`
}
