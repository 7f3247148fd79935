package models

// SessionCreate opens an interactive scene
type SessionCreate struct {
	StoreID  int64  `json:"store_id" binding:"required"`
	Mode     string `json:"mode"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Zones    *bool  `json:"zones"`
	MinDwell int64  `json:"min_dwell_seconds"`
	MaxDwell int64  `json:"max_dwell_seconds"`
	TimeFilter
}

// ShowZones defaults to true when unset
func (r SessionCreate) ShowZones() bool {
	return r.Zones == nil || *r.Zones
}

// SessionReload replaces the data selection of a scene
type SessionReload struct {
	Mode     string `json:"mode"`
	Zones    *bool  `json:"zones"`
	MinDwell int64  `json:"min_dwell_seconds"`
	MaxDwell int64  `json:"max_dwell_seconds"`
	TimeFilter
}

// ZoomRequest zooms at a screen point. A non-zero DeltaY is treated as a
// wheel step, otherwise Factor is applied.
type ZoomRequest struct {
	Factor float64 `json:"factor"`
	DeltaY float64 `json:"delta_y"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// PointerRequest is one pointer event in screen pixels
type PointerRequest struct {
	Action string  `json:"action" binding:"required,oneof=down move up"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// InteractionRequest switches the pointer interaction
type InteractionRequest struct {
	Mode string `json:"mode" binding:"required,oneof=pan calibrate draw_zone"`
}

// ViewportRequest sets zoom and pan directly
type ViewportRequest struct {
	Zoom float64 `json:"zoom" binding:"required"`
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
}

// ScaleRequest selects the auto range or a manual one
type ScaleRequest struct {
	Auto bool    `json:"auto"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// CanvasRequest resizes the scene canvas
type CanvasRequest struct {
	Width  int `json:"width" binding:"required,min=1"`
	Height int `json:"height" binding:"required,min=1"`
}

// DraftZoneRequest names a drawn zone so it can be stored
type DraftZoneRequest struct {
	Name string  `json:"name" binding:"required"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}
