package service

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/spatial"
)

// ErrInvalidZone is returned for zones without a name or with non-finite
// corners
var ErrInvalidZone = errors.New("zone needs a name and finite corners")

// ZoneService handles zone CRUD and zone statistics
type ZoneService struct {
	zones  *repository.ZoneRepository
	tracks *repository.TrackRepository
	plans  *FloorPlanService
	dwell  *DwellService
}

// NewZoneService creates a new zone service
func NewZoneService(zones *repository.ZoneRepository, tracks *repository.TrackRepository, plans *FloorPlanService, dwell *DwellService) *ZoneService {
	return &ZoneService{zones: zones, tracks: tracks, plans: plans, dwell: dwell}
}

func validZone(name string, x1, y1, x2, y2 float64) bool {
	if name == "" {
		return false
	}
	for _, v := range []float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// List retrieves the zones of a store, optionally for one floor
func (s *ZoneService) List(storeID int64, floor *int) ([]models.Zone, error) {
	return s.zones.List(storeID, floor)
}

// Get retrieves a zone, or nil
func (s *ZoneService) Get(id int64) (*models.Zone, error) {
	return s.zones.Get(id)
}

// Create stores a new zone
func (s *ZoneService) Create(in models.ZoneCreate) (*models.Zone, error) {
	if !validZone(in.Name, in.X1, in.Y1, in.X2, in.Y2) {
		return nil, ErrInvalidZone
	}
	z, err := s.zones.Create(in)
	if err != nil {
		return nil, err
	}
	log.Printf("[ZoneService] Created zone %d %q for store %d floor %d", z.ID, z.Name, z.StoreID, z.Floor)
	return z, nil
}

// Update applies a partial update
func (s *ZoneService) Update(id int64, u models.ZoneUpdate) (*models.Zone, error) {
	z, err := s.zones.Get(id)
	if err != nil {
		return nil, err
	}
	if z == nil {
		return nil, repository.ErrNotFound
	}
	u.Apply(z)
	if !validZone(z.Name, z.X1, z.Y1, z.X2, z.Y2) {
		return nil, ErrInvalidZone
	}
	if err := s.zones.Update(*z); err != nil {
		return nil, err
	}
	return z, nil
}

// Delete removes a zone
func (s *ZoneService) Delete(id int64) error {
	return s.zones.Delete(id)
}

// Stats counts tracks and visitors per requested zone, or per zone of the
// floor when no ids are given. With IncludeDwell the average dwell of the
// dwell cells inside each zone is added.
func (s *ZoneService) Stats(req models.ZoneStatsRequest) ([]models.ZoneStats, error) {
	zones, err := s.floorZones(req)
	if err != nil {
		return nil, err
	}
	offset, err := s.plans.Offset(req.StoreID, req.Floor)
	if err != nil {
		return nil, err
	}

	stats := make([]models.ZoneStats, 0, len(zones))
	for _, z := range zones {
		st, err := s.tracks.ZoneStats(req.StoreID, req.TimeFilter, z, offset)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	if req.IncludeDwell && len(zones) > 0 {
		res, _, err := s.dwell.Analyze(req.StoreID, models.DwellFilter{TimeFilter: req.TimeFilter})
		if err != nil {
			return nil, fmt.Errorf("failed to compute dwell for zones: %w", err)
		}
		for i, z := range zones {
			var total, visits int64
			for _, c := range res.Cells {
				if z.Contains(c.X, c.Y) {
					total += c.TotalDwell
					visits += c.VisitCount
				}
			}
			if visits > 0 {
				avg := spatial.Round1(float64(total) / float64(visits))
				stats[i].AvgDwellSeconds = &avg
			}
		}
	}
	return stats, nil
}

// Coverage reports how many visitors entered at least one zone of the floor.
// With no zone ids every zone of the floor is used.
func (s *ZoneService) Coverage(req models.ZoneStatsRequest) (*models.ZoneCoverage, error) {
	zones, err := s.floorZones(req)
	if err != nil {
		return nil, err
	}
	offset, err := s.plans.Offset(req.StoreID, req.Floor)
	if err != nil {
		return nil, err
	}
	cov, err := s.tracks.Coverage(req.StoreID, req.TimeFilter, zones, offset)
	if err != nil {
		return nil, err
	}
	return &cov, nil
}

// Completeness reports how many of the zones each visitor passed through
func (s *ZoneService) Completeness(req models.ZoneStatsRequest) (*models.TrackCompleteness, error) {
	zones, err := s.floorZones(req)
	if err != nil {
		return nil, err
	}
	offset, err := s.plans.Offset(req.StoreID, req.Floor)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]map[int]bool)
	err = s.tracks.Scan(req.StoreID, req.TimeFilter, func(p models.TrackPoint) error {
		seen, ok := visited[p.HashID]
		if !ok {
			seen = make(map[int]bool)
			visited[p.HashID] = seen
		}
		x, y := p.Longitude+offset.X, p.Latitude+offset.Y
		for i, z := range zones {
			if z.Contains(x, y) {
				seen[i] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracks: %w", err)
	}

	out := &models.TrackCompleteness{
		TotalZones:    len(zones),
		TotalVisitors: int64(len(visited)),
		Distribution:  make(map[int]int64),
	}
	for _, seen := range visited {
		n := len(seen)
		out.Distribution[n]++
		switch {
		case n == len(zones) && n > 0:
			out.CompleteTracks++
		case n > 0:
			out.PartialTracks++
		}
	}
	if out.TotalVisitors > 0 {
		out.CompletePct = spatial.Round1(float64(out.CompleteTracks) / float64(out.TotalVisitors) * 100)
		out.PartialPct = spatial.Round1(float64(out.PartialTracks) / float64(out.TotalVisitors) * 100)
	}
	return out, nil
}

func (s *ZoneService) floorZones(req models.ZoneStatsRequest) ([]models.Zone, error) {
	if len(req.ZoneIDs) > 0 {
		return s.zones.GetMany(req.StoreID, req.ZoneIDs)
	}
	floor := req.Floor
	return s.zones.List(req.StoreID, &floor)
}
