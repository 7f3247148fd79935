package zone

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

func square() transform.Pipeline {
	bounds := r2.Rect{X: r1.Interval{Lo: 0, Hi: 100}, Y: r1.Interval{Lo: 0, Hi: 100}}
	return transform.NewPipeline(transform.NewFrame(bounds), transform.Size{W: 100, H: 100})
}

func TestProject(t *testing.T) {
	p := square()
	z := models.Zone{ID: 1, X1: 10, Y1: 20, X2: 40, Y2: 60}
	box := Project(z, p)
	assert.Equal(t, r1.Interval{Lo: 10, Hi: 40}, box.X)
	assert.Equal(t, r1.Interval{Lo: 40, Hi: 80}, box.Y)

	swapped := models.Zone{ID: 1, X1: 40, Y1: 60, X2: 10, Y2: 20}
	assert.Equal(t, box, Project(swapped, p))
}

func TestProjectRotatedUsesCornerBox(t *testing.T) {
	p := square()
	p.Alignment = transform.Simple{ScaleX: 1, ScaleY: 1, Rotation: 30}
	z := models.Zone{X1: 20, Y1: 20, X2: 60, Y2: 50}

	a := p.Forward(r2.Point{X: 20, Y: 20})
	b := p.Forward(r2.Point{X: 60, Y: 50})
	box := Project(z, p)
	assert.True(t, box.ContainsPoint(a))
	assert.True(t, box.ContainsPoint(b))
	assert.Equal(t, r2.RectFromPoints(a, b), box)
}

func TestHitTestFirstMatch(t *testing.T) {
	p := square()
	zones := []models.Zone{
		{ID: 7, X1: 0, Y1: 0, X2: 50, Y2: 50},
		{ID: 8, X1: 25, Y1: 25, X2: 75, Y2: 75},
	}
	// data (30,30) -> canvas (30,70), inside both
	assert.Equal(t, 0, HitTest(zones, p, r2.Point{X: 30, Y: 70}))
	// data (60,60) -> canvas (60,40), only the second
	assert.Equal(t, 1, HitTest(zones, p, r2.Point{X: 60, Y: 40}))
	assert.Equal(t, -1, HitTest(zones, p, r2.Point{X: 95, Y: 5}))
}

func TestSelectionClickToggles(t *testing.T) {
	p := square()
	zones := []models.Zone{{ID: 3, X1: 0, Y1: 0, X2: 50, Y2: 50}}
	sel := Selection{}

	id, ok := sel.Click(zones, p, r2.Point{X: 10, Y: 90})
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, []int64{3}, sel.IDs())

	sel.Click(zones, p, r2.Point{X: 10, Y: 90})
	assert.Empty(t, sel.IDs())

	_, ok = sel.Click(zones, p, r2.Point{X: 90, Y: 10})
	assert.False(t, ok)
}

func TestDrawerMinimumSize(t *testing.T) {
	var d Drawer
	d.Begin(r2.Point{X: 10, Y: 10})
	d.Move(r2.Point{X: 20, Y: 50})
	preview, ok := d.Preview()
	require.True(t, ok)
	assert.Equal(t, r1.Interval{Lo: 10, Hi: 20}, preview.X)

	_, ok = d.End(r2.Point{X: 29, Y: 50}, square())
	assert.False(t, ok, "19px wide drag must not create a zone")
	assert.False(t, d.Active())

	_, ok = d.End(r2.Point{X: 90, Y: 90}, square())
	assert.False(t, ok, "end without begin")
}

func TestDrawerUsesInversePipeline(t *testing.T) {
	p := square()
	p.Viewport = transform.Viewport{Zoom: 2}

	var d Drawer
	d.Begin(r2.Point{X: 30, Y: 30})
	draft, ok := d.End(r2.Point{X: 70, Y: 70}, p)
	require.True(t, ok)
	assert.InDelta(t, 40, draft.X1, 1e-9)
	assert.InDelta(t, 60, draft.Y1, 1e-9)
	assert.InDelta(t, 60, draft.X2, 1e-9)
	assert.InDelta(t, 40, draft.Y2, 1e-9)

	req := draft.Create(5, 1, "Entrance")
	assert.Equal(t, int64(5), req.StoreID)
	assert.Equal(t, "Entrance", req.Name)
	assert.Equal(t, draft.X2, req.X2)
}

func TestDraw(t *testing.T) {
	p := square()
	zones := []models.Zone{{ID: 1, Name: "A", X1: 10, Y1: 10, X2: 90, Y2: 90}}
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))

	Draw(img, ProjectAll(zones, p), Selection{1: true}, map[int64]string{1: "42"})

	assert.Equal(t, color.NRGBA{R: 255, G: 200, B: 0, A: 255}, img.NRGBAAt(89, 89))
	assert.NotZero(t, img.NRGBAAt(50, 50).A, "fill")
	assert.Zero(t, img.NRGBAAt(5, 5).A, "outside the zone")

	dark := 0
	for y := 10; y < 30; y++ {
		for x := 10; x < 60; x++ {
			if c := img.NRGBAAt(x, y); c.A > 0 && c.R < 128 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "label text")
}
