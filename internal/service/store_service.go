package service

import (
	"fmt"
	"log"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
)

// StoreService handles stores and track import
type StoreService struct {
	stores *repository.StoreRepository
	tracks *repository.TrackRepository
}

// NewStoreService creates a new store service
func NewStoreService(stores *repository.StoreRepository, tracks *repository.TrackRepository) *StoreService {
	return &StoreService{stores: stores, tracks: tracks}
}

// List returns every store with its floors
func (s *StoreService) List() ([]models.Store, error) {
	stores, err := s.stores.List()
	if err != nil {
		return nil, err
	}
	for i := range stores {
		if stores[i].Floors, err = s.tracks.Floors(stores[i].StoreID); err != nil {
			return nil, err
		}
	}
	return stores, nil
}

// Get returns one store with its floors, or nil
func (s *StoreService) Get(id int64) (*models.Store, error) {
	store, err := s.stores.Get(id)
	if err != nil || store == nil {
		return store, err
	}
	if store.Floors, err = s.tracks.Floors(id); err != nil {
		return nil, err
	}
	return store, nil
}

// Save creates or renames a store
func (s *StoreService) Save(in models.StoreCreate) (*models.Store, error) {
	if err := s.stores.Save(in); err != nil {
		return nil, err
	}
	return s.Get(in.StoreID)
}

// Import validates and stores a batch of track points. Invalid points are
// counted and skipped.
func (s *StoreService) Import(in models.TrackImport) (*models.ImportResult, error) {
	points := make([]models.TrackPoint, 0, len(in.Points))
	var rejected int64
	for _, d := range in.Points {
		if err := d.Validate(); err != nil {
			rejected++
			continue
		}
		points = append(points, d.TrackPoint(in.StoreID))
	}

	inserted, err := s.tracks.Import(in.StoreID, points)
	if err != nil {
		return nil, fmt.Errorf("failed to import tracks: %w", err)
	}
	log.Printf("[StoreService] Imported %d points for store %d (%d rejected)", inserted, in.StoreID, rejected)
	return &models.ImportResult{Inserted: inserted, Rejected: rejected}, nil
}
