package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// FloorPlanHandler handles HTTP requests for floor plans and alignment
type FloorPlanHandler struct {
	service  *service.FloorPlanService
	underlay *service.UnderlayLoader
}

// NewFloorPlanHandler creates a new floor plan handler
func NewFloorPlanHandler(service *service.FloorPlanService, underlay *service.UnderlayLoader) *FloorPlanHandler {
	return &FloorPlanHandler{service: service, underlay: underlay}
}

func (h *FloorPlanHandler) params(c *gin.Context) (int64, int, bool) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return 0, 0, false
	}
	floor, ok := floorParam(c)
	return storeID, floor, ok
}

// ListFloorPlans handles GET /api/v1/stores/:storeId/floorplans
func (h *FloorPlanHandler) ListFloorPlans(c *gin.Context) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	plans, err := h.service.List(storeID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get floor plans", err)
		return
	}
	response.Success(c, gin.H{
		"floorplans": plans,
		"count":      len(plans),
	})
}

// GetFloorPlan handles GET /api/v1/floorplans/:storeId/:floor
func (h *FloorPlanHandler) GetFloorPlan(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	fp, err := h.service.Get(storeID, floor)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get floor plan", err)
		return
	}
	if fp == nil {
		response.NotFound(c, "Floor plan not found")
		return
	}
	response.Success(c, fp)
}

// Calibrate handles PUT /api/v1/floorplans/:storeId/:floor/calibrate
func (h *FloorPlanHandler) Calibrate(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	var req models.FloorPlanCalibration
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	fp, err := h.service.Calibrate(storeID, floor, req)
	if err != nil {
		serviceError(c, "Failed to calibrate floor plan", err)
		return
	}
	response.Success(c, fp)
}

// Adjust handles PUT /api/v1/floorplans/:storeId/:floor/adjust
func (h *FloorPlanHandler) Adjust(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	var req models.FloorPlanAdjustment
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	fp, err := h.service.Adjust(storeID, floor, req)
	if err != nil {
		serviceError(c, "Failed to save adjustment", err)
		return
	}
	response.Success(c, fp)
}

// CalibratePoints handles POST /api/v1/floorplans/:storeId/:floor/calibrate-points
func (h *FloorPlanHandler) CalibratePoints(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	var req models.PointCalibration
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Source) != len(req.Destination) {
		response.Error(c, http.StatusBadRequest, "source and destination need the same number of points", nil)
		return
	}
	res, err := h.service.CalibratePoints(storeID, floor, req)
	if err != nil {
		serviceError(c, "Failed to calibrate", err)
		return
	}
	response.Success(c, res)
}

// ResetAlignment handles POST /api/v1/floorplans/:storeId/:floor/reset
func (h *FloorPlanHandler) ResetAlignment(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	fp, err := h.service.ResetAlignment(storeID, floor)
	if err != nil {
		serviceError(c, "Failed to reset alignment", err)
		return
	}
	response.Success(c, fp)
}

// DeleteFloorPlan handles DELETE /api/v1/floorplans/:storeId/:floor
func (h *FloorPlanHandler) DeleteFloorPlan(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	if err := h.service.Delete(storeID, floor); err != nil {
		serviceError(c, "Failed to delete floor plan", err)
		return
	}
	response.Success(c, gin.H{"store_id": storeID, "floor": floor})
}

// GetImage handles GET /api/v1/floorplans/:storeId/:floor/image
func (h *FloorPlanHandler) GetImage(c *gin.Context) {
	storeID, floor, ok := h.params(c)
	if !ok {
		return
	}
	fp, err := h.service.Get(storeID, floor)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get floor plan", err)
		return
	}
	if fp == nil || fp.Filename == "" {
		response.NotFound(c, "Floor plan image not found")
		return
	}
	img, err := h.underlay.Load(fp.Filename)
	if err != nil {
		if errors.Is(err, service.ErrNoImage) {
			response.NotFound(c, "Floor plan image not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to load floor plan image", err)
		return
	}
	writePNG(c, img)
}
