package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// ZoneHandler handles HTTP requests for zones and zone statistics
type ZoneHandler struct {
	service *service.ZoneService
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(service *service.ZoneService) *ZoneHandler {
	return &ZoneHandler{service: service}
}

// ListZones handles GET /api/v1/stores/:storeId/zones?floor=
func (h *ZoneHandler) ListZones(c *gin.Context) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	var floor *int
	if raw, set := c.GetQuery("floor"); set {
		f, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid floor", err)
			return
		}
		floor = &f
	}

	zones, err := h.service.List(storeID, floor)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get zones", err)
		return
	}
	response.Success(c, gin.H{
		"zones": zones,
		"count": len(zones),
	})
}

// GetZone handles GET /api/v1/zones/:id
func (h *ZoneHandler) GetZone(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	z, err := h.service.Get(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get zone", err)
		return
	}
	if z == nil {
		response.NotFound(c, "Zone not found")
		return
	}
	response.Success(c, z)
}

// CreateZone handles POST /api/v1/zones
func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req models.ZoneCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	z, err := h.service.Create(req)
	if err != nil {
		serviceError(c, "Failed to create zone", err)
		return
	}
	response.Created(c, z)
}

// UpdateZone handles PUT /api/v1/zones/:id
func (h *ZoneHandler) UpdateZone(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req models.ZoneUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	z, err := h.service.Update(id, req)
	if err != nil {
		serviceError(c, "Failed to update zone", err)
		return
	}
	response.Success(c, z)
}

// DeleteZone handles DELETE /api/v1/zones/:id
func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		serviceError(c, "Failed to delete zone", err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}

func (h *ZoneHandler) bindStats(c *gin.Context) (models.ZoneStatsRequest, bool) {
	req := models.ZoneStatsRequest{TimeFilter: models.DefaultTimeFilter()}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	return req, validFilter(c, req.TimeFilter)
}

// GetZoneStats handles POST /api/v1/zones/stats
func (h *ZoneHandler) GetZoneStats(c *gin.Context) {
	req, ok := h.bindStats(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get zone stats", err)
		return
	}
	response.Success(c, gin.H{"zones": stats})
}

// GetCoverage handles POST /api/v1/zones/coverage
func (h *ZoneHandler) GetCoverage(c *gin.Context) {
	req, ok := h.bindStats(c)
	if !ok {
		return
	}
	cov, err := h.service.Coverage(req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get zone coverage", err)
		return
	}
	response.Success(c, cov)
}

// GetCompleteness handles POST /api/v1/zones/completeness
func (h *ZoneHandler) GetCompleteness(c *gin.Context) {
	req, ok := h.bindStats(c)
	if !ok {
		return
	}
	comp, err := h.service.Completeness(req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get track completeness", err)
		return
	}
	response.Success(c, comp)
}
