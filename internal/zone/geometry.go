// Package zone projects zone rectangles through the transform pipeline,
// hit-tests them and turns canvas drags into new data-space zones.
package zone

import (
	"sort"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// Project returns the on-screen box of a zone: both stored corners go
// through the full forward pipeline and the box spans their min/max.
//
// Under a rotated alignment the true outline is a rotated quad; this box is
// a known approximation and is kept as is.
func Project(z models.Zone, p transform.Pipeline) r2.Rect {
	a := p.Forward(r2.Point{X: z.X1, Y: z.Y1})
	b := p.Forward(r2.Point{X: z.X2, Y: z.Y2})
	return r2.RectFromPoints(a, b)
}

// Projected pairs a zone with its screen box
type Projected struct {
	Zone models.Zone
	Box  r2.Rect
}

// ProjectAll projects zones in order
func ProjectAll(zones []models.Zone, p transform.Pipeline) []Projected {
	out := make([]Projected, len(zones))
	for i, z := range zones {
		out[i] = Projected{Zone: z, Box: Project(z, p)}
	}
	return out
}

// HitTest returns the index of the first zone whose projected box contains
// the screen point, or -1.
func HitTest(zones []models.Zone, p transform.Pipeline, click r2.Point) int {
	for i, z := range zones {
		if Project(z, p).ContainsPoint(click) {
			return i
		}
	}
	return -1
}

// Selection is the set of selected zone ids
type Selection map[int64]bool

// Toggle flips the selection state of id and returns the new state
func (s Selection) Toggle(id int64) bool {
	if s[id] {
		delete(s, id)
		return false
	}
	s[id] = true
	return true
}

// IDs returns the selected ids in ascending order
func (s Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Click hit-tests the point and toggles the first matching zone. It returns
// the toggled zone id, or false when nothing was hit.
func (s Selection) Click(zones []models.Zone, p transform.Pipeline, click r2.Point) (int64, bool) {
	i := HitTest(zones, p, click)
	if i < 0 {
		return 0, false
	}
	id := zones[i].ID
	s.Toggle(id)
	return id, true
}
