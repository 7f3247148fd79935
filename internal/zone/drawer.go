package zone

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// MinDragSize is the minimum drag extent (px) on both axes for a drag to
// create a zone
const MinDragSize = 20.0

// Draft is a completed drag converted to data space
type Draft struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Create turns the draft into a zone creation request
func (d Draft) Create(storeID int64, floor int, name string) models.ZoneCreate {
	return models.ZoneCreate{
		StoreID: storeID,
		Floor:   floor,
		Name:    name,
		X1:      d.X1,
		Y1:      d.Y1,
		X2:      d.X2,
		Y2:      d.Y2,
	}
}

// Drawer tracks one drag-to-create gesture in screen space
type Drawer struct {
	active  bool
	start   r2.Point
	current r2.Point
}

// Begin starts a drag at p
func (d *Drawer) Begin(p r2.Point) {
	d.active = true
	d.start = p
	d.current = p
}

// Move updates the drag end point
func (d *Drawer) Move(p r2.Point) {
	if d.active {
		d.current = p
	}
}

// Active reports whether a drag is in progress
func (d *Drawer) Active() bool {
	return d.active
}

// Preview returns the screen rectangle being dragged
func (d *Drawer) Preview() (r2.Rect, bool) {
	if !d.active {
		return r2.EmptyRect(), false
	}
	return r2.RectFromPoints(d.start, d.current), true
}

// Cancel abandons the drag
func (d *Drawer) Cancel() {
	*d = Drawer{}
}

// End finishes the drag at p. Both screen corners go through the inverse
// pipeline. Drags smaller than MinDragSize on either axis are dropped.
func (d *Drawer) End(p r2.Point, pipe transform.Pipeline) (Draft, bool) {
	if !d.active {
		return Draft{}, false
	}
	start := d.start
	d.Cancel()

	if math.Abs(p.X-start.X) < MinDragSize || math.Abs(p.Y-start.Y) < MinDragSize {
		return Draft{}, false
	}

	a := pipe.Inverse(start)
	b := pipe.Inverse(p)
	return Draft{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}, true
}
