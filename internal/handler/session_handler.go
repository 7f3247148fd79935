package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/calibration"
	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/render"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/internal/session"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
	"github.com/jengzang/floorheat-backend-go/internal/zone"
	"github.com/jengzang/floorheat-backend-go/pkg/response"
)

// HeaderEvents carries the scene events raised while rendering a frame
const HeaderEvents = "X-Scene-Events"

// SessionHandler handles HTTP requests for interactive scenes
type SessionHandler struct {
	sessions *session.Manager
	plans    *service.FloorPlanService
	zones    *service.ZoneService
	canvas   config.CanvasConfig
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, plans *service.FloorPlanService, zones *service.ZoneService, canvas config.CanvasConfig) *SessionHandler {
	return &SessionHandler{sessions: sessions, plans: plans, zones: zones, canvas: canvas}
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Session not found")
		return nil, false
	}
	return s, true
}

// result sends the events of an action together with the new state
func result(c *gin.Context, s *session.Session, events []session.Event, extra gin.H) {
	if events == nil {
		events = []session.Event{}
	}
	body := gin.H{
		"events": events,
		"state":  s.State(),
	}
	for k, v := range extra {
		body[k] = v
	}
	response.Success(c, body)
}

// do runs an action on the scene and reports its outcome
func (h *SessionHandler) do(c *gin.Context, fn func(*render.Scene) error) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	events, err := s.Do(fn)
	if err != nil {
		serviceError(c, "Scene action failed", err)
		return
	}
	result(c, s, events, nil)
}

func sceneRequest(storeID int64, mode string, zones bool, minDwell, maxDwell int64, f models.TimeFilter) service.SceneRequest {
	return service.SceneRequest{
		StoreID:  storeID,
		Filter:   f,
		Mode:     mode,
		MinDwell: minDwell,
		MaxDwell: maxDwell,
		Zones:    zones,
	}
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	req := models.SessionCreate{TimeFilter: models.DefaultTimeFilter()}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !validFilter(c, req.TimeFilter) {
		return
	}
	if req.Width == 0 {
		req.Width = h.canvas.Width
	}
	if req.Height == 0 {
		req.Height = h.canvas.Height
	}
	if req.Width < 1 || req.Height < 1 || req.Width > service.MaxCanvasSide || req.Height > service.MaxCanvasSide {
		response.Error(c, http.StatusBadRequest, "Invalid canvas size", nil)
		return
	}

	s, err := h.sessions.Create(
		sceneRequest(req.StoreID, req.Mode, req.ShowZones(), req.MinDwell, req.MaxDwell, req.TimeFilter),
		transform.Size{W: float64(req.Width), H: float64(req.Height)},
	)
	if err != nil {
		if errors.Is(err, session.ErrTooMany) {
			response.Error(c, http.StatusServiceUnavailable, "Too many open sessions", err)
			return
		}
		serviceError(c, "Failed to open session", err)
		return
	}
	response.Created(c, s.State())
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	response.Success(c, s.State())
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		response.NotFound(c, "Session not found")
		return
	}
	response.Success(c, gin.H{"deleted": c.Param("id")})
}

// GetFrame handles GET /api/v1/sessions/:id/frame and returns a PNG. Events
// raised by the render are sent JSON-encoded in X-Scene-Events.
func (h *SessionHandler) GetFrame(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	frame, events := s.Frame()
	if len(events) > 0 {
		if raw, err := json.Marshal(events); err == nil {
			c.Header(HeaderEvents, string(raw))
		}
	}
	writeFrame(c, frame)
}

// GetFrameInfo handles GET /api/v1/sessions/:id/frame/info
func (h *SessionHandler) GetFrameInfo(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	frame, events := s.Frame()
	result(c, s, events, gin.H{"render": renderInfo(frame)})
}

// Zoom handles POST /api/v1/sessions/:id/zoom
func (h *SessionHandler) Zoom(c *gin.Context) {
	var req models.ZoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DeltaY == 0 && req.Factor <= 0 {
		response.Error(c, http.StatusBadRequest, "factor must be positive", nil)
		return
	}
	at := r2.Point{X: req.X, Y: req.Y}
	h.do(c, func(sc *render.Scene) error {
		if req.DeltaY != 0 {
			sc.Wheel(req.DeltaY, at)
		} else {
			sc.ZoomAt(req.Factor, at)
		}
		return nil
	})
}

// Pointer handles POST /api/v1/sessions/:id/pointer
func (h *SessionHandler) Pointer(c *gin.Context) {
	var req models.PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p := r2.Point{X: req.X, Y: req.Y}
	h.do(c, func(sc *render.Scene) error {
		switch req.Action {
		case "down":
			sc.PointerDown(p)
		case "move":
			sc.PointerMove(p)
		case "up":
			sc.PointerUp(p)
		}
		return nil
	})
}

// SetInteraction handles POST /api/v1/sessions/:id/mode
func (h *SessionHandler) SetInteraction(c *gin.Context) {
	var req models.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.do(c, func(sc *render.Scene) error {
		switch render.Mode(req.Mode) {
		case render.ModeCalibrate:
			sc.BeginCalibration()
		case render.ModeDrawZone:
			sc.BeginZoneDraw()
		default:
			sc.Cancel()
		}
		return nil
	})
}

func (h *SessionHandler) pick(c *gin.Context, destination bool) {
	var req models.CanvasPoint
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var solved *transform.Affine
	events, err := s.Do(func(sc *render.Scene) error {
		var err error
		if destination {
			solved, err = sc.PickDestination(req.Point())
		} else {
			solved, err = sc.PickSource(req.Point())
		}
		return err
	})
	if err != nil {
		serviceError(c, "Calibration failed", err)
		return
	}
	extra := gin.H{}
	if solved != nil {
		extra["affine"] = models.AffineParamsOf(*solved)
	}
	result(c, s, events, extra)
}

// PickSource handles POST /api/v1/sessions/:id/calibration/source
func (h *SessionHandler) PickSource(c *gin.Context) {
	h.pick(c, false)
}

// PickDestination handles POST /api/v1/sessions/:id/calibration/destination
func (h *SessionHandler) PickDestination(c *gin.Context) {
	h.pick(c, true)
}

// SetViewport handles PUT /api/v1/sessions/:id/viewport
func (h *SessionHandler) SetViewport(c *gin.Context) {
	var req models.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.do(c, func(sc *render.Scene) error {
		sc.SetViewport(transform.Viewport{Zoom: req.Zoom, Pan: r2.Point{X: req.PanX, Y: req.PanY}})
		return nil
	})
}

// ResetViewport handles POST /api/v1/sessions/:id/viewport/reset
func (h *SessionHandler) ResetViewport(c *gin.Context) {
	h.do(c, func(sc *render.Scene) error {
		sc.ResetViewport()
		return nil
	})
}

// SetCanvas handles PUT /api/v1/sessions/:id/canvas
func (h *SessionHandler) SetCanvas(c *gin.Context) {
	var req models.CanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Width > service.MaxCanvasSide || req.Height > service.MaxCanvasSide {
		response.Error(c, http.StatusBadRequest, "Invalid canvas size", nil)
		return
	}
	h.do(c, func(sc *render.Scene) error {
		sc.SetCanvas(transform.Size{W: float64(req.Width), H: float64(req.Height)})
		return nil
	})
}

// SetScale handles PUT /api/v1/sessions/:id/scale
func (h *SessionHandler) SetScale(c *gin.Context) {
	var req models.ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !req.Auto && req.Max <= req.Min {
		response.Error(c, http.StatusBadRequest, "max must be greater than min", nil)
		return
	}
	h.do(c, func(sc *render.Scene) error {
		sc.SetScale(raster.Scale{Auto: req.Auto, Manual: raster.Range{Min: req.Min, Max: req.Max}})
		return nil
	})
}

// SetAlignment handles PUT /api/v1/sessions/:id/alignment. The alignment
// only affects the scene until it is saved.
func (h *SessionHandler) SetAlignment(c *gin.Context) {
	var req models.FloorPlanAdjustment
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid alignment", err)
		return
	}
	a := req.Alignment()
	if aff, ok := a.(transform.Affine); ok && !aff.Invertible() {
		response.Error(c, http.StatusUnprocessableEntity, "Affine matrix is not invertible", calibration.ErrDegenerate)
		return
	}
	h.do(c, func(sc *render.Scene) error {
		sc.SetAlignment(a)
		return nil
	})
}

// ResetAlignment handles POST /api/v1/sessions/:id/alignment/reset
func (h *SessionHandler) ResetAlignment(c *gin.Context) {
	h.do(c, func(sc *render.Scene) error {
		sc.ResetAlignment()
		return nil
	})
}

// SaveAlignment handles POST /api/v1/sessions/:id/alignment/save and
// persists the scene alignment to the floor plan
func (h *SessionHandler) SaveAlignment(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var a transform.Alignment
	if _, err := s.Do(func(sc *render.Scene) error {
		a = sc.Input().Alignment
		return nil
	}); err != nil {
		serviceError(c, "Failed to read alignment", err)
		return
	}
	req := s.Request()
	fp, err := h.plans.SetAlignment(req.StoreID, req.Filter.Floor, a)
	if err != nil {
		serviceError(c, "Failed to save alignment", err)
		return
	}
	response.Success(c, fp)
}

// Reload handles POST /api/v1/sessions/:id/reload with a new data selection
func (h *SessionHandler) Reload(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	cur := s.Request()
	req := models.SessionReload{Mode: cur.Mode, TimeFilter: cur.Filter, MinDwell: cur.MinDwell, MaxDwell: cur.MaxDwell}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !validFilter(c, req.TimeFilter) {
		return
	}
	zones := cur.Zones
	if req.Zones != nil {
		zones = *req.Zones
	}
	if err := h.sessions.Reload(s, sceneRequest(cur.StoreID, req.Mode, zones, req.MinDwell, req.MaxDwell, req.TimeFilter)); err != nil {
		serviceError(c, "Failed to reload session", err)
		return
	}
	result(c, s, nil, nil)
}

// SaveZone handles POST /api/v1/sessions/:id/zones. It stores a drawn zone
// and reloads the scene so the new zone is shown.
func (h *SessionHandler) SaveZone(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req models.DraftZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cur := s.Request()
	draft := zone.Draft{X1: req.X1, Y1: req.Y1, X2: req.X2, Y2: req.Y2}
	z, err := h.zones.Create(draft.Create(cur.StoreID, cur.Filter.Floor, req.Name))
	if err != nil {
		serviceError(c, "Failed to create zone", err)
		return
	}
	cur.Zones = true
	if err := h.sessions.Reload(s, cur); err != nil {
		serviceError(c, "Failed to reload session", err)
		return
	}
	result(c, s, nil, gin.H{"zone": z})
}
