package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/calibration"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// ErrInvalidBounds is returned for calibration bounds without positive extent
var ErrInvalidBounds = errors.New("calibration bounds must have max > min on both axes")

// ErrInvalidAdjustment is returned for an adjustment that cannot be stored
var ErrInvalidAdjustment = errors.New("invalid alignment adjustment")

// FloorPlanService handles floor plan calibration and alignment
type FloorPlanService struct {
	repo *repository.FloorPlanRepository
}

// NewFloorPlanService creates a new floor plan service
func NewFloorPlanService(repo *repository.FloorPlanRepository) *FloorPlanService {
	return &FloorPlanService{repo: repo}
}

// Get retrieves the floor plan of a store floor, or nil
func (s *FloorPlanService) Get(storeID int64, floor int) (*models.FloorPlan, error) {
	return s.repo.Get(storeID, floor)
}

// List retrieves every floor plan of a store
func (s *FloorPlanService) List(storeID int64) ([]models.FloorPlan, error) {
	return s.repo.List(storeID)
}

// Delete removes a floor plan
func (s *FloorPlanService) Delete(storeID int64, floor int) error {
	return s.repo.Delete(storeID, floor)
}

// Offset returns the coordinate offset added to raw positions of a floor.
// Floors without a plan have no offset.
func (s *FloorPlanService) Offset(storeID int64, floor int) (r2.Point, error) {
	fp, err := s.repo.Get(storeID, floor)
	if err != nil {
		return r2.Point{}, err
	}
	if fp == nil {
		return r2.Point{}, nil
	}
	return r2.Point{X: fp.OffsetX, Y: fp.OffsetY}, nil
}

// getOrDefault loads the plan or starts a default one
func (s *FloorPlanService) getOrDefault(storeID int64, floor int) (models.FloorPlan, error) {
	fp, err := s.repo.Get(storeID, floor)
	if err != nil {
		return models.FloorPlan{}, err
	}
	if fp == nil {
		return models.NewFloorPlan(storeID, floor), nil
	}
	return *fp, nil
}

// Save stores a full floor plan record
func (s *FloorPlanService) Save(fp models.FloorPlan) (*models.FloorPlan, error) {
	if fp.DataMaxX <= fp.DataMinX || fp.DataMaxY <= fp.DataMinY {
		return nil, ErrInvalidBounds
	}
	return s.repo.Save(fp)
}

// Calibrate updates the data bounds the floor-plan image covers
func (s *FloorPlanService) Calibrate(storeID int64, floor int, c models.FloorPlanCalibration) (*models.FloorPlan, error) {
	if !c.Valid() {
		return nil, ErrInvalidBounds
	}
	fp, err := s.getOrDefault(storeID, floor)
	if err != nil {
		return nil, err
	}
	fp.DataMinX, fp.DataMaxX = c.DataMinX, c.DataMaxX
	fp.DataMinY, fp.DataMaxY = c.DataMinY, c.DataMaxY

	log.Printf("[FloorPlanService] Calibrated store %d floor %d to x[%g, %g] y[%g, %g]",
		storeID, floor, c.DataMinX, c.DataMaxX, c.DataMinY, c.DataMaxY)
	return s.repo.Save(fp)
}

// SetAlignment persists an alignment, replacing whatever was stored
func (s *FloorPlanService) SetAlignment(storeID int64, floor int, a transform.Alignment) (*models.FloorPlan, error) {
	fp, err := s.getOrDefault(storeID, floor)
	if err != nil {
		return nil, err
	}
	fp.SetAlignment(a)
	log.Printf("[FloorPlanService] Saved %s alignment for store %d floor %d", a.Mode(), storeID, floor)
	return s.repo.Save(fp)
}

// Adjust saves a simple or affine adjustment
func (s *FloorPlanService) Adjust(storeID int64, floor int, adj models.FloorPlanAdjustment) (*models.FloorPlan, error) {
	if err := adj.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAdjustment, err)
	}
	a := adj.Alignment()
	if aff, ok := a.(transform.Affine); ok && !aff.Invertible() {
		return nil, fmt.Errorf("%w: affine determinant %g", calibration.ErrDegenerate, aff.Det())
	}
	return s.SetAlignment(storeID, floor, a)
}

// ResetAlignment returns a floor to the identity adjustment
func (s *FloorPlanService) ResetAlignment(storeID int64, floor int) (*models.FloorPlan, error) {
	return s.SetAlignment(storeID, floor, transform.Identity())
}

// CalibratePoints solves an affine alignment from matched canvas points and
// persists it. Three pairs are solved exactly; more are fitted by least
// squares. On failure nothing is stored.
func (s *FloorPlanService) CalibratePoints(storeID int64, floor int, req models.PointCalibration) (*models.CalibrationResult, error) {
	src, dst := req.Points()
	res, err := calibration.FitAffine(src, dst)
	if err != nil {
		return nil, fmt.Errorf("failed to solve calibration: %w", err)
	}

	fp, err := s.SetAlignment(storeID, floor, res.Transform)
	if err != nil {
		return nil, err
	}
	log.Printf("[FloorPlanService] Point calibration for store %d floor %d: %d pairs, residual %.2fpx",
		storeID, floor, len(src), res.Residual)

	return &models.CalibrationResult{
		FloorPlan: fp,
		Affine:    models.AffineParamsOf(res.Transform),
		Residual:  res.Residual,
	}, nil
}
