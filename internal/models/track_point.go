package models

import (
	"fmt"
	"time"
)

// TrackPoint is one position report of an anonymised visitor
type TrackPoint struct {
	ID          int64   `json:"id" db:"id"`
	HashID      string  `json:"hash_id" db:"hash_id"`
	StoreID     int64   `json:"store_id" db:"store_id"`
	Floor       int     `json:"floor" db:"floor"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	Timestamp   int64   `json:"timestamp" db:"timestamp"` // Unix timestamp in seconds
	Date        string  `json:"date" db:"date"`           // Format: 2006-01-02
	Hour        int     `json:"hour" db:"hour"`
	Uncertainty int     `json:"uncertainty,omitempty" db:"uncertainty"`
}

// TrackImport is a batch of points for one store
type TrackImport struct {
	StoreID int64            `json:"store_id" binding:"required"`
	Points  []TrackPointData `json:"points" binding:"required,min=1,dive"`
}

// TrackPointData is the wire form of an imported point. Date and hour are
// derived from the timestamp in UTC.
type TrackPointData struct {
	HashID      string  `json:"hash_id" binding:"required"`
	Floor       int     `json:"floor"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timestamp   int64   `json:"timestamp" binding:"required"`
	Uncertainty int     `json:"uncertainty"`
}

// TrackPoint expands the wire form for the given store
func (d TrackPointData) TrackPoint(storeID int64) TrackPoint {
	t := time.Unix(d.Timestamp, 0).UTC()
	return TrackPoint{
		HashID:      d.HashID,
		StoreID:     storeID,
		Floor:       d.Floor,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Timestamp:   d.Timestamp,
		Date:        t.Format(DateLayout),
		Hour:        t.Hour(),
		Uncertainty: d.Uncertainty,
	}
}

// Validate checks coordinates are finite and in range
func (d TrackPointData) Validate() error {
	if d.Latitude < -90 || d.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", d.Latitude)
	}
	if d.Longitude < -180 || d.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", d.Longitude)
	}
	return nil
}

// ImportResult reports how many points were stored
type ImportResult struct {
	Inserted int64 `json:"inserted"`
	Rejected int64 `json:"rejected"`
}
