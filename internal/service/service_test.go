package service

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/floorheat-backend-go/internal/calibration"
	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/database"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

type fixture struct {
	stores  *StoreService
	plans   *FloorPlanService
	heatmap *HeatmapService
	dwell   *DwellService
	zones   *ZoneService
	render  *RenderService
}

func newFixture(t *testing.T, imageDir string) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := config.Default()
	tracks := repository.NewTrackRepository(db)
	plans := NewFloorPlanService(repository.NewFloorPlanRepository(db))
	heatmap := NewHeatmapService(tracks, plans, cfg.Heatmap)
	dwell := NewDwellService(tracks, plans, cfg.Heatmap)
	zones := NewZoneService(repository.NewZoneRepository(db), tracks, plans, dwell)
	return &fixture{
		stores:  NewStoreService(repository.NewStoreRepository(db), tracks),
		plans:   plans,
		heatmap: heatmap,
		dwell:   dwell,
		zones:   zones,
		render:  NewRenderService(heatmap, dwell, zones, plans, NewUnderlayLoader(imageDir), cfg.Render),
	}
}

// 2024-03-01 10:00 UTC
const day1 = int64(1709287200)

// seed imports a visitor standing still for two minutes near (1, 1) and a
// second visitor walking past (5, 5)
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	res, err := f.stores.Import(models.TrackImport{StoreID: 1, Points: []models.TrackPointData{
		{HashID: "a", Longitude: 1, Latitude: 1, Timestamp: day1},
		{HashID: "a", Longitude: 1, Latitude: 1, Timestamp: day1 + 60},
		{HashID: "a", Longitude: 1, Latitude: 1, Timestamp: day1 + 120},
		{HashID: "b", Longitude: 5, Latitude: 5, Timestamp: day1},
		{HashID: "b", Longitude: 6, Latitude: 6, Timestamp: day1 + 10},
		{HashID: "bad", Longitude: 500, Latitude: 1, Timestamp: day1},
	}})
	require.NoError(t, err)
	require.Equal(t, int64(5), res.Inserted)
	require.Equal(t, int64(1), res.Rejected)
}

func (f *fixture) setOffset(t *testing.T, x, y float64) {
	t.Helper()
	fp := models.NewFloorPlan(1, 0)
	fp.OffsetX, fp.OffsetY = x, y
	_, err := f.plans.Save(fp)
	require.NoError(t, err)
}

func TestHeatmapAppliesOffset(t *testing.T) {
	f := newFixture(t, "")
	f.seed(t)
	f.setOffset(t, 10, 20)

	resp, err := f.heatmap.GetHeatmap(1, models.DefaultTimeFilter())
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalReturned)
	assert.Equal(t, int64(5), resp.TotalInDatabase)
	assert.Equal(t, int64(2), resp.TotalUniqueVisitors)
	assert.Equal(t, models.Bounds{MinX: 11, MaxX: 16, MinY: 21, MaxY: 26}, resp.Bounds)
	assert.False(t, resp.Sampled)

	empty, err := f.heatmap.GetHeatmap(2, models.DefaultTimeFilter())
	require.NoError(t, err)
	assert.Empty(t, empty.Points)
	assert.True(t, empty.Bounds.IsZero())
}

func TestGridCounts(t *testing.T) {
	f := newFixture(t, "")
	f.seed(t)

	grid, err := f.heatmap.Grid(1, models.GridFilter{TimeFilter: models.DefaultTimeFilter(), GridSize: 1})
	require.NoError(t, err)
	require.Len(t, grid.Cells, 3)
	assert.Equal(t, int64(3), grid.MaxCount)
	assert.Equal(t, int64(3), grid.Cells[0].TrackCount)
	assert.Equal(t, int64(1), grid.Cells[0].UniqueVisitors)
}

func TestDwellDetectsStandingVisitor(t *testing.T) {
	f := newFixture(t, "")
	f.seed(t)
	f.setOffset(t, 100, 0)

	resp, err := f.dwell.GetDwell(1, models.DwellFilter{TimeFilter: models.DefaultTimeFilter()})
	require.NoError(t, err)
	require.Len(t, resp.Cells, 1)
	c := resp.Cells[0]
	assert.Equal(t, int64(120), c.TotalDwellSeconds)
	assert.Equal(t, int64(1), c.UniqueVisitors)
	assert.Equal(t, 1.0, c.Intensity)
	assert.InDelta(t, 101, c.X, 1e-3)
	assert.Equal(t, 1.0, resp.GridSize)
	assert.Equal(t, 1, resp.Durations.Count)
	assert.Equal(t, 120.0, resp.Durations.Median)

	samples, err := f.dwell.Samples(1, models.DwellFilter{TimeFilter: models.DefaultTimeFilter(), MaxDwellSeconds: 60})
	require.NoError(t, err)
	assert.Zero(t, samples.Len())
}

func TestZoneLifecycleAndStats(t *testing.T) {
	f := newFixture(t, "")
	f.seed(t)

	_, err := f.zones.Create(models.ZoneCreate{StoreID: 1, Name: ""})
	assert.ErrorIs(t, err, ErrInvalidZone)

	entrance, err := f.zones.Create(models.ZoneCreate{StoreID: 1, Name: "Entrance", X1: 2, Y1: 2, X2: 0, Y2: 0})
	require.NoError(t, err)
	aisle, err := f.zones.Create(models.ZoneCreate{StoreID: 1, Name: "Aisle", X1: 4, Y1: 4, X2: 7, Y2: 7})
	require.NoError(t, err)

	stats, err := f.zones.Stats(models.ZoneStatsRequest{
		StoreID:      1,
		ZoneIDs:      []int64{entrance.ID, aisle.ID},
		IncludeDwell: true,
		TimeFilter:   models.DefaultTimeFilter(),
	})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(3), stats[0].TrackCount)
	require.NotNil(t, stats[0].AvgDwellSeconds)
	assert.Equal(t, 120.0, *stats[0].AvgDwellSeconds)
	assert.Equal(t, int64(2), stats[1].TrackCount)
	assert.Nil(t, stats[1].AvgDwellSeconds)

	cov, err := f.zones.Coverage(models.ZoneStatsRequest{StoreID: 1, TimeFilter: models.DefaultTimeFilter()})
	require.NoError(t, err)
	assert.Equal(t, 100.0, cov.CoveragePct)

	comp, err := f.zones.Completeness(models.ZoneStatsRequest{StoreID: 1, TimeFilter: models.DefaultTimeFilter()})
	require.NoError(t, err)
	assert.Equal(t, 2, comp.TotalZones)
	assert.Equal(t, int64(2), comp.PartialTracks)
	assert.Equal(t, 100.0, comp.PartialPct)
	assert.Equal(t, map[int]int64{1: 2}, comp.Distribution)

	name := "Front"
	updated, err := f.zones.Update(entrance.ID, models.ZoneUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Front", updated.Name)

	require.NoError(t, f.zones.Delete(aisle.ID))
	_, err = f.zones.Update(aisle.ID, models.ZoneUpdate{Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCalibrateBoundsAndPoints(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.stores.Save(models.StoreCreate{StoreID: 1, Name: "Main"})
	require.NoError(t, err)

	_, err = f.plans.Calibrate(1, 0, models.FloorPlanCalibration{DataMinX: 5, DataMaxX: 5, DataMaxY: 1})
	assert.ErrorIs(t, err, ErrInvalidBounds)

	fp, err := f.plans.Calibrate(1, 0, models.FloorPlanCalibration{DataMinX: 0, DataMaxX: 50, DataMinY: 0, DataMaxY: 40})
	require.NoError(t, err)
	assert.Equal(t, 50.0, fp.DataMaxX)
	assert.Equal(t, 1000, fp.ImageWidth)

	pts := func(xy ...float64) []models.CanvasPoint {
		var out []models.CanvasPoint
		for i := 0; i < len(xy); i += 2 {
			out = append(out, models.CanvasPoint{X: xy[i], Y: xy[i+1]})
		}
		return out
	}
	res, err := f.plans.CalibratePoints(1, 0, models.PointCalibration{
		Source:      pts(0, 0, 10, 0, 0, 10, 10, 10),
		Destination: pts(5, 5, 25, 5, 5, 25, 25, 25),
	})
	require.NoError(t, err)
	assert.InDelta(t, 2, res.Affine.A, 1e-9)
	assert.InDelta(t, 5, res.Affine.Tx, 1e-9)
	assert.InDelta(t, 0, res.Residual, 1e-9)
	assert.Equal(t, transform.ModeAffine, res.FloorPlan.Alignment().Mode())
	assert.Equal(t, 50.0, res.FloorPlan.DataMaxX, "bounds survive")

	_, err = f.plans.CalibratePoints(1, 0, models.PointCalibration{
		Source:      pts(0, 0, 1, 1, 2, 2),
		Destination: pts(0, 0, 1, 0, 0, 1),
	})
	assert.ErrorIs(t, err, calibration.ErrDegenerate)
	stored, err := f.plans.Get(1, 0)
	require.NoError(t, err)
	assert.True(t, stored.HasAffine(), "failed calibration keeps the previous alignment")

	_, err = f.plans.Adjust(1, 0, models.FloorPlanAdjustment{Affine: &models.AffineParams{A: 1, B: 2, C: 2, D: 4}})
	assert.ErrorIs(t, err, calibration.ErrDegenerate)

	zero := 0.0
	_, err = f.plans.Adjust(1, 0, models.FloorPlanAdjustment{ScaleX: &zero})
	assert.ErrorIs(t, err, ErrInvalidAdjustment, "a zero scale would read back as 1")

	one := 1.2
	fp, err = f.plans.Adjust(1, 0, models.FloorPlanAdjustment{OffsetX: 3, ScaleX: &one})
	require.NoError(t, err)
	assert.False(t, fp.HasAffine())
	assert.Equal(t, transform.Simple{OffsetX: 3, ScaleX: 1.2, ScaleY: 1}, fp.Alignment())

	fp, err = f.plans.ResetAlignment(1, 0)
	require.NoError(t, err)
	assert.Equal(t, transform.Identity(), fp.Alignment())
}

func writePNG(t *testing.T, dir, name string, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	out, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, png.Encode(out, img))
}

func TestUnderlayLoader(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "plan.png", color.NRGBA{R: 255, A: 255})
	l := NewUnderlayLoader(dir)

	img, err := l.Load("plan.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = l.Load("missing.png")
	assert.ErrorIs(t, err, ErrNoImage)
	_, err = l.Load("../etc/passwd")
	assert.Error(t, err)
	_, err = l.Load("")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestRenderComposesLayers(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "plan.png", color.NRGBA{G: 255, A: 255})
	f := newFixture(t, dir)
	f.seed(t)

	fp := models.NewFloorPlan(1, 0)
	fp.Filename = "plan.png"
	fp.DataMinX, fp.DataMaxX, fp.DataMinY, fp.DataMaxY = 0, 10, 0, 10
	_, err := f.plans.Save(fp)
	require.NoError(t, err)

	filter := models.RenderFilter{TimeFilter: models.DefaultTimeFilter(), Mode: raster.ModeTracks, Width: 100, Height: 100, Zoom: 1}
	frame, err := f.render.Render(1, filter)
	require.NoError(t, err)
	assert.Equal(t, 100, frame.Image.Bounds().Dx())
	assert.True(t, frame.Layer.Auto)
	assert.False(t, frame.HasVisible)

	// the underlay shows where there is no heat
	corner := frame.Image.NRGBAAt(99, 0)
	assert.Greater(t, corner.G, corner.R)

	filter.Mode = "bogus"
	_, err = f.render.Render(1, filter)
	assert.ErrorIs(t, err, ErrInvalidMode)

	filter.Mode, filter.Width = raster.ModeDwell, 0
	_, err = f.render.Render(1, filter)
	assert.Error(t, err)

	filter.Width, filter.Zoom, filter.Manual, filter.ScaleMin, filter.ScaleMax = 100, 2, true, 0, 500
	frame, err = f.render.Render(1, filter)
	require.NoError(t, err)
	assert.False(t, frame.Layer.Auto)
	assert.Equal(t, raster.Range{Min: 0, Max: 500}, frame.Layer.Range)
	assert.True(t, frame.HasVisible)
}
