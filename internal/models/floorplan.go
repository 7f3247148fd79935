package models

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// FloorPlan is the calibration record for one store floor. The affine
// columns are either all set or all NULL; when set they take precedence over
// the simple adjustment.
type FloorPlan struct {
	ID       int64  `json:"id" db:"id"`
	StoreID  int64  `json:"store_id" db:"store_id"`
	Floor    int    `json:"floor" db:"floor"`
	Filename string `json:"filename" db:"filename"`

	// Calibration bounds: the data rectangle the image covers
	DataMinX float64 `json:"data_min_x" db:"data_min_x"`
	DataMaxX float64 `json:"data_max_x" db:"data_max_x"`
	DataMinY float64 `json:"data_min_y" db:"data_min_y"`
	DataMaxY float64 `json:"data_max_y" db:"data_max_y"`

	ImageWidth  int `json:"image_width" db:"image_width"`
	ImageHeight int `json:"image_height" db:"image_height"`

	// Coordinate offset added to raw longitude/latitude
	OffsetX float64 `json:"offset_x" db:"offset_x"`
	OffsetY float64 `json:"offset_y" db:"offset_y"`

	// Simple adjustment
	AdjustOffsetX  float64 `json:"adjust_offset_x" db:"adjust_offset_x"` // percent of width
	AdjustOffsetY  float64 `json:"adjust_offset_y" db:"adjust_offset_y"` // percent of height
	AdjustScale    float64 `json:"adjust_scale" db:"adjust_scale"`
	AdjustScaleX   float64 `json:"adjust_scale_x" db:"adjust_scale_x"`
	AdjustScaleY   float64 `json:"adjust_scale_y" db:"adjust_scale_y"`
	AdjustRotation float64 `json:"adjust_rotation" db:"adjust_rotation"` // degrees

	// Affine adjustment, NULL unless calibrated with points
	AffineA  *float64 `json:"affine_a" db:"affine_a"`
	AffineB  *float64 `json:"affine_b" db:"affine_b"`
	AffineC  *float64 `json:"affine_c" db:"affine_c"`
	AffineD  *float64 `json:"affine_d" db:"affine_d"`
	AffineTx *float64 `json:"affine_tx" db:"affine_tx"`
	AffineTy *float64 `json:"affine_ty" db:"affine_ty"`

	CreatedAt string `json:"created_at" db:"created_at"`
	UpdatedAt string `json:"updated_at" db:"updated_at"`
}

// NewFloorPlan returns a record with the default 0..100 bounds, a 1000px
// image and the identity adjustment
func NewFloorPlan(storeID int64, floor int) FloorPlan {
	return FloorPlan{
		StoreID:      storeID,
		Floor:        floor,
		DataMaxX:     100,
		DataMaxY:     100,
		ImageWidth:   1000,
		ImageHeight:  1000,
		AdjustScale:  1,
		AdjustScaleX: 1,
		AdjustScaleY: 1,
	}
}

// Bounds returns the calibration rectangle
func (f FloorPlan) Bounds() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: f.DataMinX, Hi: f.DataMaxX},
		Y: r1.Interval{Lo: f.DataMinY, Hi: f.DataMaxY},
	}
}

// Frame returns the reference frame for the calibrated floor plan
func (f FloorPlan) Frame() transform.Frame {
	return transform.NewFrame(f.Bounds())
}

// HasAffine reports whether every affine column is set
func (f FloorPlan) HasAffine() bool {
	return f.AffineA != nil && f.AffineB != nil && f.AffineC != nil &&
		f.AffineD != nil && f.AffineTx != nil && f.AffineTy != nil
}

// Alignment returns the stored adjustment. The uniform scale multiplies the
// per-axis scales.
func (f FloorPlan) Alignment() transform.Alignment {
	if f.HasAffine() {
		return transform.NewAffine(*f.AffineA, *f.AffineB, *f.AffineC, *f.AffineD, *f.AffineTx, *f.AffineTy)
	}
	scale := f.AdjustScale
	if scale == 0 {
		scale = 1
	}
	return transform.Simple{
		OffsetX:  f.AdjustOffsetX,
		OffsetY:  f.AdjustOffsetY,
		ScaleX:   scale * orOne(f.AdjustScaleX),
		ScaleY:   scale * orOne(f.AdjustScaleY),
		Rotation: f.AdjustRotation,
	}
}

// SetAlignment flattens a onto the columns. An affine resets the simple
// parameters to identity; a simple adjustment clears the affine columns.
func (f *FloorPlan) SetAlignment(a transform.Alignment) {
	switch v := a.(type) {
	case transform.Affine:
		ca, cb, cc, cd, tx, ty := v.Coefficients()
		f.AffineA, f.AffineB, f.AffineC, f.AffineD = &ca, &cb, &cc, &cd
		f.AffineTx, f.AffineTy = &tx, &ty
		f.setSimple(transform.Identity())
	case transform.Simple:
		f.AffineA, f.AffineB, f.AffineC, f.AffineD = nil, nil, nil, nil
		f.AffineTx, f.AffineTy = nil, nil
		f.setSimple(v)
	default:
		f.SetAlignment(transform.Identity())
	}
}

func (f *FloorPlan) setSimple(s transform.Simple) {
	f.AdjustOffsetX = s.OffsetX
	f.AdjustOffsetY = s.OffsetY
	f.AdjustScale = 1
	f.AdjustScaleX = s.ScaleX
	f.AdjustScaleY = s.ScaleY
	f.AdjustRotation = s.Rotation
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// FloorPlanCalibration updates the calibration bounds
type FloorPlanCalibration struct {
	DataMinX float64 `json:"data_min_x"`
	DataMaxX float64 `json:"data_max_x"`
	DataMinY float64 `json:"data_min_y"`
	DataMaxY float64 `json:"data_max_y"`
}

// Valid reports whether the bounds have positive extent on both axes
func (c FloorPlanCalibration) Valid() bool {
	return c.DataMaxX > c.DataMinX && c.DataMaxY > c.DataMinY
}

// AffineParams is the wire form of an affine adjustment
type AffineParams struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	Tx float64 `json:"tx"`
	Ty float64 `json:"ty"`
}

// FloorPlanAdjustment saves either a simple or an affine adjustment. When
// Affine is present the simple fields are ignored.
type FloorPlanAdjustment struct {
	OffsetX  float64       `json:"offset_x"`
	OffsetY  float64       `json:"offset_y"`
	Scale    *float64      `json:"scale"`
	ScaleX   *float64      `json:"scale_x"`
	ScaleY   *float64      `json:"scale_y"`
	Rotation float64       `json:"rotation"`
	Affine   *AffineParams `json:"affine"`
}

// Validate rejects values that cannot be stored and read back unchanged:
// zero or non-finite scales and non-finite offsets, rotation or coefficients.
func (a FloorPlanAdjustment) Validate() error {
	if a.Affine != nil {
		p := a.Affine
		for _, v := range []float64{p.A, p.B, p.C, p.D, p.Tx, p.Ty} {
			if !finite(v) {
				return fmt.Errorf("affine coefficients must be finite")
			}
		}
		return nil
	}
	scales := []struct {
		name string
		v    *float64
	}{{"scale", a.Scale}, {"scale_x", a.ScaleX}, {"scale_y", a.ScaleY}}
	for _, sc := range scales {
		if sc.v != nil && (*sc.v == 0 || !finite(*sc.v)) {
			return fmt.Errorf("%s must be finite and non-zero, got %v", sc.name, *sc.v)
		}
	}
	for _, v := range []float64{a.OffsetX, a.OffsetY, a.Rotation} {
		if !finite(v) {
			return fmt.Errorf("offsets and rotation must be finite")
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Alignment converts the request into the alignment sum type
func (a FloorPlanAdjustment) Alignment() transform.Alignment {
	if a.Affine != nil {
		p := a.Affine
		return transform.NewAffine(p.A, p.B, p.C, p.D, p.Tx, p.Ty)
	}
	scale := 1.0
	if a.Scale != nil {
		scale = *a.Scale
	}
	sx, sy := scale, scale
	if a.ScaleX != nil {
		sx = scale * *a.ScaleX
	}
	if a.ScaleY != nil {
		sy = scale * *a.ScaleY
	}
	return transform.Simple{OffsetX: a.OffsetX, OffsetY: a.OffsetY, ScaleX: sx, ScaleY: sy, Rotation: a.Rotation}
}

// CanvasPoint is a point picked on the canvas
type CanvasPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point converts to r2
func (p CanvasPoint) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// PointCalibration carries matched canvas points: Source on the heat layer,
// Destination on the floor plan. Three pairs solve exactly; more are fitted
// by least squares.
type PointCalibration struct {
	Source      []CanvasPoint `json:"source" binding:"required,min=3"`
	Destination []CanvasPoint `json:"destination" binding:"required,min=3"`
}

// Points converts both sides to r2
func (c PointCalibration) Points() (src, dst []r2.Point) {
	src = make([]r2.Point, len(c.Source))
	for i, p := range c.Source {
		src[i] = p.Point()
	}
	dst = make([]r2.Point, len(c.Destination))
	for i, p := range c.Destination {
		dst[i] = p.Point()
	}
	return src, dst
}

// CalibrationResult is returned after a point calibration
type CalibrationResult struct {
	FloorPlan *FloorPlan   `json:"floorplan"`
	Affine    AffineParams `json:"affine"`
	Residual  float64      `json:"residual_px"`
}

// AffineParamsOf returns the wire form of a
func AffineParamsOf(a transform.Affine) AffineParams {
	ca, cb, cc, cd, tx, ty := a.Coefficients()
	return AffineParams{A: ca, B: cb, C: cc, D: cd, Tx: tx, Ty: ty}
}
