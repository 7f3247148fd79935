package service

import (
	"fmt"
	"log"
	"time"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/analysis/dwell"
	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/spatial"
)

// HeatmapService provides the raw track dataset of a store floor
type HeatmapService struct {
	tracks *repository.TrackRepository
	plans  *FloorPlanService
	cfg    config.HeatmapConfig
}

// NewHeatmapService creates a new heatmap service
func NewHeatmapService(tracks *repository.TrackRepository, plans *FloorPlanService, cfg config.HeatmapConfig) *HeatmapService {
	return &HeatmapService{tracks: tracks, plans: plans, cfg: cfg}
}

// Settings returns the defaults the client needs
func (s *HeatmapService) Settings() models.HeatmapSettings {
	return models.HeatmapSettings{
		GridSize:              s.cfg.GridSize,
		DwellSpatialThreshold: s.cfg.DwellSpatialThreshold,
		DwellMinTime:          s.cfg.DwellMinTime,
		MaxRawPoints:          s.cfg.MaxRawPoints,
	}
}

// Points returns up to MaxRawPoints positions with the floor offset applied
func (s *HeatmapService) Points(storeID int64, f models.TimeFilter) ([]r2.Point, bool, error) {
	offset, err := s.plans.Offset(storeID, f.Floor)
	if err != nil {
		return nil, false, err
	}
	points, sampled, err := s.tracks.RawPoints(storeID, f, s.cfg.MaxRawPoints)
	if err != nil {
		return nil, false, err
	}
	for i := range points {
		points[i] = points[i].Add(offset)
	}
	return points, sampled, nil
}

// GetHeatmap returns raw points, their bounds and the totals of a filter
func (s *HeatmapService) GetHeatmap(storeID int64, f models.TimeFilter) (*models.HeatmapResponse, error) {
	started := time.Now()
	points, sampled, err := s.Points(storeID, f)
	if err != nil {
		return nil, err
	}
	totals, err := s.tracks.Totals(storeID, f)
	if err != nil {
		return nil, err
	}

	resp := &models.HeatmapResponse{
		Points:              make([]models.HeatmapPoint, len(points)),
		Bounds:              models.BoundsOf(spatial.BoundingBox(points)),
		TotalReturned:       len(points),
		TotalInDatabase:     totals.Tracks,
		TotalUniqueVisitors: totals.UniqueVisitors,
		TotalVisitorDays:    totals.VisitorDays,
		Sampled:             sampled,
	}
	for i, p := range points {
		resp.Points[i] = models.HeatmapPoint{X: p.X, Y: p.Y}
	}

	log.Printf("[HeatmapService] store=%d floor=%d returned %d of %d points in %v",
		storeID, f.Floor, resp.TotalReturned, resp.TotalInDatabase, time.Since(started))
	return resp, nil
}

// Totals returns the row and visitor counts of a filter
func (s *HeatmapService) Totals(storeID int64, f models.TimeFilter) (models.Totals, error) {
	return s.tracks.Totals(storeID, f)
}

// Grid aggregates all matching points into metric grid cells. Unlike
// Points it is never sampled.
func (s *HeatmapService) Grid(storeID int64, f models.GridFilter) (*models.GridResponse, error) {
	gridSize := f.GridSize
	if gridSize <= 0 {
		gridSize = s.cfg.GridSize
	}
	offset, err := s.plans.Offset(storeID, f.Floor)
	if err != nil {
		return nil, err
	}

	var points []dwell.Point
	err = s.tracks.Scan(storeID, f.TimeFilter, func(p models.TrackPoint) error {
		points = append(points, dwell.Point{HashID: p.HashID, Lat: p.Latitude, Lon: p.Longitude, Timestamp: p.Timestamp})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracks: %w", err)
	}

	steps := dwell.StepsFor(gridSize, dwell.MeanLatitude(points))
	type key struct{ x, y float64 }
	type acc struct {
		count    int64
		visitors map[string]bool
	}
	cells := make(map[key]*acc)
	var order []key
	for _, p := range points {
		k := key{
			spatial.SnapToGrid(p.Lon+offset.X, steps.Lon),
			spatial.SnapToGrid(p.Lat+offset.Y, steps.Lat),
		}
		a, ok := cells[k]
		if !ok {
			a = &acc{visitors: make(map[string]bool)}
			cells[k] = a
			order = append(order, k)
		}
		a.count++
		a.visitors[p.HashID] = true
	}

	resp := &models.GridResponse{Cells: make([]models.GridCell, 0, len(order)), GridSize: gridSize}
	bounds := r2.EmptyRect()
	for _, k := range order {
		a := cells[k]
		resp.Cells = append(resp.Cells, models.GridCell{X: k.x, Y: k.y, TrackCount: a.count, UniqueVisitors: int64(len(a.visitors))})
		resp.MaxCount = max(resp.MaxCount, a.count)
		bounds = bounds.AddPoint(r2.Point{X: k.x, Y: k.y})
	}
	resp.Bounds = models.BoundsOf(bounds)
	return resp, nil
}
