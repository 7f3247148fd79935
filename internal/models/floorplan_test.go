package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

func ptr(v float64) *float64 { return &v }

func TestFloorPlanAdjustmentValidate(t *testing.T) {
	tests := []struct {
		name    string
		adj     FloorPlanAdjustment
		wantErr bool
	}{
		{"identity", FloorPlanAdjustment{}, false},
		{"scaled", FloorPlanAdjustment{Scale: ptr(2), ScaleX: ptr(0.5), Rotation: 15}, false},
		{"negative scale mirrors", FloorPlanAdjustment{ScaleY: ptr(-1)}, false},
		{"zero scale_x", FloorPlanAdjustment{ScaleX: ptr(0)}, true},
		{"zero uniform scale", FloorPlanAdjustment{Scale: ptr(0)}, true},
		{"infinite scale_y", FloorPlanAdjustment{ScaleY: ptr(math.Inf(1))}, true},
		{"nan offset", FloorPlanAdjustment{OffsetX: math.NaN()}, true},
		{"affine", FloorPlanAdjustment{Affine: &AffineParams{A: 1, D: 1, Tx: 4}}, false},
		{"nan affine", FloorPlanAdjustment{Affine: &AffineParams{A: math.NaN(), D: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.adj.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSimpleAlignmentRoundTrip(t *testing.T) {
	adj := FloorPlanAdjustment{OffsetX: 2, OffsetY: -3, Scale: ptr(2), ScaleY: ptr(0.25), Rotation: 30}
	fp := NewFloorPlan(1, 0)
	fp.SetAlignment(adj.Alignment())

	assert.False(t, fp.HasAffine())
	assert.Equal(t, transform.Simple{OffsetX: 2, OffsetY: -3, ScaleX: 2, ScaleY: 0.5, Rotation: 30}, fp.Alignment())
}
