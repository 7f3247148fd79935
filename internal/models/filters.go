package models

import (
	"fmt"
	"time"
)

// DateLayout is the format of date filter values
const DateLayout = "2006-01-02"

// TimeFilter selects track points by floor, date range and hour-of-day range.
// Dates are inclusive, hours are inclusive 0-23.
type TimeFilter struct {
	Floor     int    `json:"floor" form:"floor"`
	StartDate string `json:"start_date" form:"start_date"`
	EndDate   string `json:"end_date" form:"end_date"`
	StartHour int    `json:"start_hour" form:"start_hour,default=0"`
	EndHour   int    `json:"end_hour" form:"end_hour,default=23"`
}

// DefaultTimeFilter covers the whole day on floor 0 with no date limits
func DefaultTimeFilter() TimeFilter {
	return TimeFilter{StartHour: 0, EndHour: 23}
}

// Validate checks date formats and hour bounds
func (f TimeFilter) Validate() error {
	if f.StartHour < 0 || f.StartHour > 23 || f.EndHour < 0 || f.EndHour > 23 {
		return fmt.Errorf("hours must be within 0-23, got %d-%d", f.StartHour, f.EndHour)
	}
	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = time.Parse(DateLayout, f.StartDate); err != nil {
			return fmt.Errorf("invalid start_date %q: %w", f.StartDate, err)
		}
	}
	if f.EndDate != "" {
		if end, err = time.Parse(DateLayout, f.EndDate); err != nil {
			return fmt.Errorf("invalid end_date %q: %w", f.EndDate, err)
		}
	}
	if f.StartDate != "" && f.EndDate != "" && end.Before(start) {
		return fmt.Errorf("end_date %s is before start_date %s", f.EndDate, f.StartDate)
	}
	return nil
}

// DwellFilter extends TimeFilter with dwell thresholds
type DwellFilter struct {
	TimeFilter
	MinDwellSeconds int64   `json:"min_dwell_seconds" form:"min_dwell_seconds"`
	MaxDwellSeconds int64   `json:"max_dwell_seconds" form:"max_dwell_seconds"`
	GridSize        float64 `json:"grid_size" form:"grid_size"`
}

// RenderFilter carries the image parameters of the render endpoint
type RenderFilter struct {
	TimeFilter
	Mode     string  `form:"mode,default=tracks"`
	Width    int     `form:"width,default=800"`
	Height   int     `form:"height,default=600"`
	Zoom     float64 `form:"zoom,default=1"`
	PanX     float64 `form:"pan_x"`
	PanY     float64 `form:"pan_y"`
	Manual   bool    `form:"manual"`
	ScaleMin float64 `form:"scale_min"`
	ScaleMax float64 `form:"scale_max"`
	Zones    bool    `form:"zones,default=true"`
	MinDwell int64   `form:"min_dwell_seconds"`
	MaxDwell int64   `form:"max_dwell_seconds"`
}
