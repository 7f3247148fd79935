package handler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/calibration"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/render"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// Response headers describing a rendered frame
const (
	HeaderScaleMin       = "X-Scale-Min"
	HeaderScaleMax       = "X-Scale-Max"
	HeaderScaleAuto      = "X-Scale-Auto"
	HeaderGeneration     = "X-Generation"
	HeaderVisibleInView  = "X-Visible-In-View"
	HeaderVisibleTotal   = "X-Visible-Total"
	HeaderVisiblePercent = "X-Visible-Percentage"
)

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), err)
		return 0, false
	}
	return v, true
}

func floorParam(c *gin.Context) (int, bool) {
	v, err := strconv.Atoi(c.Param("floor"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid floor", err)
		return 0, false
	}
	return v, true
}

func validFilter(c *gin.Context, f models.TimeFilter) bool {
	if err := f.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid time filter", err)
		return false
	}
	return true
}

// serviceError maps service errors to status codes
func serviceError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Error(c, http.StatusNotFound, message, err)
	case errors.Is(err, service.ErrInvalidZone),
		errors.Is(err, service.ErrInvalidBounds),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidAdjustment):
		response.Error(c, http.StatusBadRequest, message, err)
	case errors.Is(err, calibration.ErrDegenerate),
		errors.Is(err, calibration.ErrIncomplete),
		errors.Is(err, render.ErrWrongMode):
		response.Error(c, http.StatusUnprocessableEntity, message, err)
	default:
		response.Error(c, http.StatusInternalServerError, message, err)
	}
}

// renderInfo describes a frame for clients
func renderInfo(f render.Frame) models.RenderInfo {
	info := models.RenderInfo{
		ScaleMin:   f.Layer.Range.Min,
		ScaleMax:   f.Layer.Range.Max,
		AutoScale:  f.Layer.Auto,
		Generation: f.Generation,
	}
	if f.HasVisible {
		info.Visible = &models.Visible{
			InView:     f.Visible.InView,
			Total:      f.Visible.Total,
			Percentage: f.Visible.Percentage,
		}
	}
	return info
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeFrame sends the frame as PNG with its render info as headers
func writeFrame(c *gin.Context, f render.Frame) {
	info := renderInfo(f)
	c.Header(HeaderScaleMin, formatFloat(info.ScaleMin))
	c.Header(HeaderScaleMax, formatFloat(info.ScaleMax))
	c.Header(HeaderScaleAuto, strconv.FormatBool(info.AutoScale))
	c.Header(HeaderGeneration, strconv.FormatUint(info.Generation, 10))
	if info.Visible != nil {
		c.Header(HeaderVisibleInView, strconv.Itoa(info.Visible.InView))
		c.Header(HeaderVisibleTotal, strconv.Itoa(info.Visible.Total))
		c.Header(HeaderVisiblePercent, strconv.FormatFloat(info.Visible.Percentage, 'f', 1, 64))
	}
	writePNG(c, f.Image)
}

func writePNG(c *gin.Context, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		response.InternalError(c, "Failed to encode image", err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
