package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// StoreHandler handles HTTP requests for stores and track import
type StoreHandler struct {
	service *service.StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(service *service.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

// ListStores handles GET /api/v1/stores
func (h *StoreHandler) ListStores(c *gin.Context) {
	stores, err := h.service.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get stores", err)
		return
	}
	response.Success(c, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// GetStore handles GET /api/v1/stores/:storeId
func (h *StoreHandler) GetStore(c *gin.Context) {
	id, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	store, err := h.service.Get(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get store", err)
		return
	}
	if store == nil {
		response.NotFound(c, "Store not found")
		return
	}
	response.Success(c, store)
}

// SaveStore handles POST /api/v1/stores
func (h *StoreHandler) SaveStore(c *gin.Context) {
	var req models.StoreCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	store, err := h.service.Save(req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to save store", err)
		return
	}
	response.Success(c, store)
}

// ImportTracks handles POST /api/v1/stores/:storeId/tracks
func (h *StoreHandler) ImportTracks(c *gin.Context) {
	id, ok := int64Param(c, "storeId")
	if !ok {
		return
	}
	var req models.TrackImport
	req.StoreID = id
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StoreID != id {
		response.Error(c, http.StatusBadRequest, "store_id does not match the path", nil)
		return
	}
	res, err := h.service.Import(req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to import tracks", err)
		return
	}
	response.Success(c, res)
}
