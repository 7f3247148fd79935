package service

import (
	"fmt"
	"log"
	"time"

	"github.com/jengzang/floorheat-backend-go/internal/analysis/dwell"
	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/stats"
)

// DwellService computes dwell-time heatmaps from raw tracks
type DwellService struct {
	tracks *repository.TrackRepository
	plans  *FloorPlanService
	cfg    config.HeatmapConfig
}

// NewDwellService creates a new dwell service
func NewDwellService(tracks *repository.TrackRepository, plans *FloorPlanService, cfg config.HeatmapConfig) *DwellService {
	return &DwellService{tracks: tracks, plans: plans, cfg: cfg}
}

// Analyze detects dwell events and aggregates them into grid cells in data
// space (offset applied)
func (s *DwellService) Analyze(storeID int64, f models.DwellFilter) (dwell.Result, float64, error) {
	started := time.Now()
	gridSize := f.GridSize
	if gridSize <= 0 {
		gridSize = s.cfg.GridSize
	}
	minDwell := f.MinDwellSeconds
	if minDwell <= 0 {
		minDwell = s.cfg.DwellMinTime
	}

	var points []dwell.Point
	err := s.tracks.Scan(storeID, f.TimeFilter, func(p models.TrackPoint) error {
		points = append(points, dwell.Point{HashID: p.HashID, Lat: p.Latitude, Lon: p.Longitude, Timestamp: p.Timestamp})
		return nil
	})
	if err != nil {
		return dwell.Result{}, 0, fmt.Errorf("failed to scan tracks: %w", err)
	}

	events := dwell.Detect(points, dwell.Params{
		SpatialThreshold: s.cfg.DwellSpatialThreshold,
		MinDwell:         minDwell,
		MaxDwell:         f.MaxDwellSeconds,
	})

	offset, err := s.plans.Offset(storeID, f.Floor)
	if err != nil {
		return dwell.Result{}, 0, err
	}
	dwell.Shift(events, offset)

	res := dwell.Aggregate(events, dwell.StepsFor(gridSize, dwell.MeanLatitude(points)))
	log.Printf("[DwellService] store=%d floor=%d: %d points, %d events, %d cells in %v",
		storeID, f.Floor, len(points), len(events), len(res.Cells), time.Since(started))
	return res, gridSize, nil
}

// GetDwell returns the dwell dataset for a store floor
func (s *DwellService) GetDwell(storeID int64, f models.DwellFilter) (*models.DwellResponse, error) {
	res, gridSize, err := s.Analyze(storeID, f)
	if err != nil {
		return nil, err
	}

	resp := &models.DwellResponse{
		Cells:          make([]models.DwellCell, len(res.Cells)),
		GridSize:       gridSize,
		Bounds:         models.BoundsOf(res.Bounds),
		TotalDwellTime: res.TotalDwell,
		AvgDwellTime:   res.AvgDwell,
		TotalEvents:    res.Events,
		Durations:      stats.Summarize(res.Durations),
	}
	var maxTotal int64
	for _, c := range res.Cells {
		maxTotal = max(maxTotal, c.TotalDwell)
	}
	for i, c := range res.Cells {
		resp.Cells[i] = models.DwellCell{
			X:                 c.X,
			Y:                 c.Y,
			TotalDwellSeconds: c.TotalDwell,
			AvgDwellSeconds:   c.AvgDwell(),
			VisitCount:        c.VisitCount,
			UniqueVisitors:    c.Visitors,
		}
		if maxTotal > 0 {
			resp.Cells[i].Intensity = float64(c.TotalDwell) / float64(maxTotal)
		}
	}
	return resp, nil
}

// Samples returns the dwell cells as rasterizer input, valued by average
// dwell seconds
func (s *DwellService) Samples(storeID int64, f models.DwellFilter) (raster.Dwell, error) {
	res, _, err := s.Analyze(storeID, f)
	if err != nil {
		return raster.Dwell{}, err
	}
	cells := make([]raster.Cell, len(res.Cells))
	for i, c := range res.Cells {
		cells[i] = raster.Cell{X: c.X, Y: c.Y, Value: c.AvgDwell()}
	}
	return raster.Dwell{Cells: cells}, nil
}
