package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// DwellHandler handles HTTP requests for dwell-time heatmaps
type DwellHandler struct {
	service *service.DwellService
}

// NewDwellHandler creates a new dwell handler
func NewDwellHandler(service *service.DwellService) *DwellHandler {
	return &DwellHandler{service: service}
}

// GetDwell handles GET /api/v1/dwell/:storeId
func (h *DwellHandler) GetDwell(c *gin.Context) {
	filter := models.DwellFilter{TimeFilter: models.DefaultTimeFilter()}
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	h.respond(c, filter)
}

// PostDwell handles POST /api/v1/dwell/:storeId with the filter as body
func (h *DwellHandler) PostDwell(c *gin.Context) {
	filter := models.DwellFilter{TimeFilter: models.DefaultTimeFilter()}
	if err := c.ShouldBindJSON(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.respond(c, filter)
}

func (h *DwellHandler) respond(c *gin.Context, filter models.DwellFilter) {
	storeID, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	if !validFilter(c, filter.TimeFilter) {
		return
	}
	if filter.MaxDwellSeconds > 0 && filter.MaxDwellSeconds < filter.MinDwellSeconds {
		response.Error(c, http.StatusBadRequest, "max_dwell_seconds is below min_dwell_seconds", nil)
		return
	}

	result, err := h.service.GetDwell(storeID, filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to compute dwell", err)
		return
	}
	response.Success(c, result)
}
