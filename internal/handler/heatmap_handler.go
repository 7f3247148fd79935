package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// HeatmapHandler handles HTTP requests for heatmap datasets and images
type HeatmapHandler struct {
	service *service.HeatmapService
	render  *service.RenderService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(service *service.HeatmapService, render *service.RenderService) *HeatmapHandler {
	return &HeatmapHandler{service: service, render: render}
}

// GetSettings handles GET /api/v1/heatmap/settings
func (h *HeatmapHandler) GetSettings(c *gin.Context) {
	response.Success(c, h.service.Settings())
}

// GetHeatmap handles GET /api/v1/heatmap/:storeId
func (h *HeatmapHandler) GetHeatmap(c *gin.Context) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	filter := models.DefaultTimeFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if !validFilter(c, filter) {
		return
	}

	result, err := h.service.GetHeatmap(storeID, filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get heatmap", err)
		return
	}
	response.Success(c, result)
}

// GetTotals handles GET /api/v1/heatmap/:storeId/totals
func (h *HeatmapHandler) GetTotals(c *gin.Context) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	filter := models.DefaultTimeFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if !validFilter(c, filter) {
		return
	}

	totals, err := h.service.Totals(storeID, filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to count tracks", err)
		return
	}
	response.Success(c, totals)
}

// GetGrid handles GET /api/v1/heatmap/:storeId/grid
func (h *HeatmapHandler) GetGrid(c *gin.Context) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	filter := models.GridFilter{TimeFilter: models.DefaultTimeFilter()}
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if !validFilter(c, filter.TimeFilter) {
		return
	}
	if filter.GridSize < 0 {
		response.Error(c, http.StatusBadRequest, "grid_size must be positive", nil)
		return
	}

	grid, err := h.service.Grid(storeID, filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to aggregate grid", err)
		return
	}
	response.Success(c, grid)
}

// Render handles GET /api/v1/heatmap/:storeId/render and returns a PNG
func (h *HeatmapHandler) Render(c *gin.Context) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	filter := models.RenderFilter{TimeFilter: models.DefaultTimeFilter()}
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if !validFilter(c, filter.TimeFilter) {
		return
	}
	if filter.Manual && filter.ScaleMax <= filter.ScaleMin {
		response.Error(c, http.StatusBadRequest, "scale_max must be greater than scale_min", nil)
		return
	}
	if filter.Width <= 0 || filter.Height <= 0 || filter.Width > service.MaxCanvasSide || filter.Height > service.MaxCanvasSide {
		response.Error(c, http.StatusBadRequest, "Invalid canvas size", nil)
		return
	}

	frame, err := h.render.Render(storeID, filter)
	if err != nil {
		serviceError(c, "Failed to render heatmap", err)
		return
	}
	writeFrame(c, frame)
}
