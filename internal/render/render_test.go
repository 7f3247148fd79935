package render

import (
	"image"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"

	"github.com/jengzang/floorheat-backend-go/internal/calibration"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
	"github.com/jengzang/floorheat-backend-go/internal/viewport"
	"github.com/jengzang/floorheat-backend-go/internal/zone"
)

var canvas = transform.Size{W: 100, H: 100}

func newScene(hooks Hooks) *Scene {
	bounds := r2.Rect{X: r1.Interval{Lo: 0, Hi: 100}, Y: r1.Interval{Lo: 0, Hi: 100}}
	in := Input{
		Samples: raster.Tracks{Points: []r2.Point{{X: 50, Y: 50}}},
		Frame:   transform.NewFrame(bounds),
		Scale:   raster.AutoScale(),
		Options: raster.DefaultOptions(),
	}
	return NewScene(canvas, in, hooks)
}

func TestStaleFrameDiscarded(t *testing.T) {
	s := newScene(Hooks{})

	job := s.Prepare()
	require.True(t, s.ZoomAt(2, r2.Point{X: 20, Y: 20}))
	stale := job.Run()

	assert.False(t, s.Accept(stale))
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Fresh())

	f := s.Render()
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, f.Generation, cur.Generation)
	assert.Equal(t, s.Generation(), cur.Generation)
	assert.True(t, s.Fresh())
}

func TestRangeReportedOncePerChange(t *testing.T) {
	var reports []raster.Range
	s := newScene(Hooks{OnRangeChange: func(r raster.Range) { reports = append(reports, r) }})

	s.Render()
	s.Render()
	require.Len(t, reports, 1)

	at := r2.Point{X: 50, Y: 50}
	s.SetSamples(raster.Tracks{Points: []r2.Point{at, at, at}})
	s.Render()
	require.Len(t, reports, 2)
	assert.Greater(t, reports[1].Max, reports[0].Max)
}

func TestRangeReportSettles(t *testing.T) {
	var s *Scene
	reports := 0
	s = newScene(Hooks{OnRangeChange: func(r raster.Range) {
		reports++
		// seed the manual override from the detected range
		s.SetScale(raster.Scale{Manual: r})
	}})

	first := s.Render()
	assert.False(t, s.Fresh(), "hook changed the inputs")
	second := s.Render()

	assert.Equal(t, 1, reports)
	assert.False(t, second.Layer.Auto)
	assert.Equal(t, first.Layer.Range, second.Layer.Range)
	assert.True(t, s.Fresh())
}

func TestVisibleReports(t *testing.T) {
	type report struct {
		v  viewport.Visibility
		ok bool
	}
	var reports []report
	s := newScene(Hooks{OnVisibleChange: func(v viewport.Visibility, ok bool) {
		reports = append(reports, report{v, ok})
	}})

	f := s.Render()
	assert.False(t, f.HasVisible)
	assert.Empty(t, reports)

	s.ZoomAt(2, r2.Point{X: 50, Y: 50})
	s.Render()
	require.Len(t, reports, 1)
	assert.True(t, reports[0].ok)
	assert.Equal(t, 1, reports[0].v.InView)

	s.Render()
	assert.Len(t, reports, 1)

	s.ResetViewport()
	s.Render()
	require.Len(t, reports, 2)
	assert.False(t, reports[1].ok)
}

func TestCalibrationFlow(t *testing.T) {
	var aligned []transform.Alignment
	s := newScene(Hooks{OnAlignmentChange: func(a transform.Alignment) { aligned = append(aligned, a) }})

	_, err := s.PickSource(r2.Point{})
	assert.ErrorIs(t, err, ErrWrongMode)

	s.BeginCalibration()
	src := []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	for _, p := range src {
		aff, err := s.PickSource(p)
		require.NoError(t, err)
		assert.Nil(t, aff)
	}
	var solved *transform.Affine
	for _, p := range src {
		solved, err = s.PickDestination(p.Add(r2.Point{X: 5, Y: 5}))
		require.NoError(t, err)
	}
	require.NotNil(t, solved)
	assert.InDelta(t, 5, solved.M[2], 1e-9)
	assert.InDelta(t, 5, solved.M[5], 1e-9)

	assert.Equal(t, ModePan, s.Mode())
	require.Len(t, aligned, 1)
	assert.Equal(t, transform.ModeAffine, aligned[0].Mode())
	assert.Equal(t, transform.ModeAffine, s.Input().Alignment.Mode())
}

func TestCalibrationDegenerateKeepsAlignment(t *testing.T) {
	calls := 0
	s := newScene(Hooks{OnAlignmentChange: func(transform.Alignment) { calls++ }})
	s.BeginCalibration()

	for i := 0; i < 3; i++ {
		_, err := s.PickSource(r2.Point{X: float64(i), Y: float64(i)})
		require.NoError(t, err)
	}
	var err error
	for i := 0; i < 3; i++ {
		_, err = s.PickDestination(r2.Point{X: float64(i * 3), Y: float64(i)})
	}
	assert.ErrorIs(t, err, calibration.ErrDegenerate)
	assert.Zero(t, calls)
	assert.Equal(t, transform.ModeSimple, s.Input().Alignment.Mode())

	sources, destinations := s.Calibration()
	assert.Empty(t, sources)
	assert.Empty(t, destinations)
	assert.Equal(t, ModeCalibrate, s.Mode())
}

func TestZoneDrawing(t *testing.T) {
	var drafts []zone.Draft
	s := newScene(Hooks{OnZoneComplete: func(d zone.Draft) { drafts = append(drafts, d) }})
	s.BeginZoneDraw()

	s.PointerDown(r2.Point{X: 10, Y: 10})
	s.PointerUp(r2.Point{X: 15, Y: 60})
	assert.Empty(t, drafts)
	assert.Equal(t, ModeDrawZone, s.Mode())

	s.PointerDown(r2.Point{X: 10, Y: 10})
	s.PointerMove(r2.Point{X: 40, Y: 40})
	preview, ok := s.DraftPreview()
	require.True(t, ok)
	assert.Equal(t, 30.0, preview.X.Length())
	s.PointerUp(r2.Point{X: 60, Y: 70})

	require.Len(t, drafts, 1)
	assert.InDelta(t, 10, drafts[0].X1, 1e-9)
	assert.InDelta(t, 90, drafts[0].Y1, 1e-9)
	assert.InDelta(t, 60, drafts[0].X2, 1e-9)
	assert.InDelta(t, 30, drafts[0].Y2, 1e-9)
	assert.Equal(t, ModePan, s.Mode())
}

func TestClickSelectsZoneAndDragPans(t *testing.T) {
	s := newScene(Hooks{})
	s.SetZones([]models.Zone{{ID: 9, Name: "Tills", X1: 0, Y1: 0, X2: 50, Y2: 50}}, nil)

	s.PointerDown(r2.Point{X: 20, Y: 80})
	s.PointerUp(r2.Point{X: 22, Y: 81})
	assert.Equal(t, []int64{9}, s.Selection())
	assert.True(t, s.Viewport().IsIdentity())

	gen := s.Generation()
	s.PointerDown(r2.Point{X: 20, Y: 80})
	s.PointerMove(r2.Point{X: 40, Y: 80})
	s.PointerUp(r2.Point{X: 40, Y: 80})
	assert.Equal(t, r2.Point{X: 20, Y: 0}, s.Viewport().Pan)
	assert.Greater(t, s.Generation(), gen)
	assert.Equal(t, []int64{9}, s.Selection(), "pan must not toggle")
}

func TestUnderlayMatrix(t *testing.T) {
	m := UnderlayMatrix(image.Rect(0, 0, 50, 50), canvas, transform.Viewport{Zoom: 2, Pan: r2.Point{X: 10}})
	assert.Equal(t, f64.Aff3{4, 0, -40, 0, 4, -50}, m)
}

func TestComposeUnderlay(t *testing.T) {
	plan := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(plan.Pix); i += 4 {
		plan.Pix[i], plan.Pix[i+3] = 255, 255
	}

	img := Compose(canvas, transform.DefaultViewport(), plan, nil, nil, nil, nil)
	c := img.NRGBAAt(50, 50)
	assert.GreaterOrEqual(t, c.R, uint8(250))
	assert.LessOrEqual(t, c.G, uint8(5))
	assert.LessOrEqual(t, c.B, uint8(5))
	assert.Equal(t, uint8(255), c.A)

	bare := Compose(canvas, transform.DefaultViewport(), nil, nil, nil, nil, nil)
	assert.Equal(t, Background, bare.NRGBAAt(50, 50))
}
