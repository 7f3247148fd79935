package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/floorheat-backend-go/internal/models"
)

// ErrNotFound is returned by updates and deletes that match no row
var ErrNotFound = errors.New("record not found")

const floorPlanColumns = `id, store_id, floor, filename,
	data_min_x, data_max_x, data_min_y, data_max_y,
	image_width, image_height, offset_x, offset_y,
	adjust_offset_x, adjust_offset_y, adjust_scale, adjust_scale_x, adjust_scale_y, adjust_rotation,
	affine_a, affine_b, affine_c, affine_d, affine_tx, affine_ty,
	COALESCE(created_at, ''), COALESCE(updated_at, '')`

// FloorPlanRepository handles database operations for floor plans
type FloorPlanRepository struct {
	db *sql.DB
}

// NewFloorPlanRepository creates a new floor plan repository
func NewFloorPlanRepository(db *sql.DB) *FloorPlanRepository {
	return &FloorPlanRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFloorPlan(row rowScanner) (*models.FloorPlan, error) {
	var fp models.FloorPlan
	var a, b, c, d, tx, ty sql.NullFloat64
	err := row.Scan(
		&fp.ID, &fp.StoreID, &fp.Floor, &fp.Filename,
		&fp.DataMinX, &fp.DataMaxX, &fp.DataMinY, &fp.DataMaxY,
		&fp.ImageWidth, &fp.ImageHeight, &fp.OffsetX, &fp.OffsetY,
		&fp.AdjustOffsetX, &fp.AdjustOffsetY, &fp.AdjustScale, &fp.AdjustScaleX, &fp.AdjustScaleY, &fp.AdjustRotation,
		&a, &b, &c, &d, &tx, &ty,
		&fp.CreatedAt, &fp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	fp.AffineA = nullable(a)
	fp.AffineB = nullable(b)
	fp.AffineC = nullable(c)
	fp.AffineD = nullable(d)
	fp.AffineTx = nullable(tx)
	fp.AffineTy = nullable(ty)
	return &fp, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Get retrieves the floor plan of a store floor, or nil if there is none
func (r *FloorPlanRepository) Get(storeID int64, floor int) (*models.FloorPlan, error) {
	row := r.db.QueryRow("SELECT "+floorPlanColumns+" FROM floorplans WHERE store_id = ? AND floor = ?", storeID, floor)
	fp, err := scanFloorPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get floor plan: %w", err)
	}
	return fp, nil
}

// List retrieves every floor plan of a store ordered by floor
func (r *FloorPlanRepository) List(storeID int64) ([]models.FloorPlan, error) {
	rows, err := r.db.Query("SELECT "+floorPlanColumns+" FROM floorplans WHERE store_id = ? ORDER BY floor", storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query floor plans: %w", err)
	}
	defer rows.Close()

	plans := []models.FloorPlan{}
	for rows.Next() {
		fp, err := scanFloorPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan floor plan: %w", err)
		}
		plans = append(plans, *fp)
	}
	return plans, rows.Err()
}

// Save inserts or replaces the floor plan of fp's store floor and returns the
// stored row
func (r *FloorPlanRepository) Save(fp models.FloorPlan) (*models.FloorPlan, error) {
	_, err := r.db.Exec(`INSERT INTO floorplans (
			store_id, floor, filename,
			data_min_x, data_max_x, data_min_y, data_max_y,
			image_width, image_height, offset_x, offset_y,
			adjust_offset_x, adjust_offset_y, adjust_scale, adjust_scale_x, adjust_scale_y, adjust_rotation,
			affine_a, affine_b, affine_c, affine_d, affine_tx, affine_ty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (store_id, floor) DO UPDATE SET
			filename = excluded.filename,
			data_min_x = excluded.data_min_x, data_max_x = excluded.data_max_x,
			data_min_y = excluded.data_min_y, data_max_y = excluded.data_max_y,
			image_width = excluded.image_width, image_height = excluded.image_height,
			offset_x = excluded.offset_x, offset_y = excluded.offset_y,
			adjust_offset_x = excluded.adjust_offset_x, adjust_offset_y = excluded.adjust_offset_y,
			adjust_scale = excluded.adjust_scale,
			adjust_scale_x = excluded.adjust_scale_x, adjust_scale_y = excluded.adjust_scale_y,
			adjust_rotation = excluded.adjust_rotation,
			affine_a = excluded.affine_a, affine_b = excluded.affine_b,
			affine_c = excluded.affine_c, affine_d = excluded.affine_d,
			affine_tx = excluded.affine_tx, affine_ty = excluded.affine_ty,
			updated_at = CURRENT_TIMESTAMP`,
		fp.StoreID, fp.Floor, fp.Filename,
		fp.DataMinX, fp.DataMaxX, fp.DataMinY, fp.DataMaxY,
		fp.ImageWidth, fp.ImageHeight, fp.OffsetX, fp.OffsetY,
		fp.AdjustOffsetX, fp.AdjustOffsetY, fp.AdjustScale, fp.AdjustScaleX, fp.AdjustScaleY, fp.AdjustRotation,
		fp.AffineA, fp.AffineB, fp.AffineC, fp.AffineD, fp.AffineTx, fp.AffineTy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save floor plan: %w", err)
	}
	return r.Get(fp.StoreID, fp.Floor)
}

// Delete removes the floor plan of a store floor
func (r *FloorPlanRepository) Delete(storeID int64, floor int) error {
	res, err := r.db.Exec("DELETE FROM floorplans WHERE store_id = ? AND floor = ?", storeID, floor)
	if err != nil {
		return fmt.Errorf("failed to delete floor plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete floor plan: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
