package repository

import (
	"database/sql"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/floorheat-backend-go/internal/database"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func point(hash string, lon, lat float64, ts int64) models.TrackPoint {
	return models.TrackPointData{HashID: hash, Latitude: lat, Longitude: lon, Timestamp: ts}.TrackPoint(1)
}

// 2024-03-01 10:00 UTC
const day1 = int64(1709287200)

func seedTracks(t *testing.T, repo *TrackRepository) {
	t.Helper()
	points := []models.TrackPoint{
		point("a", 1, 1, day1),
		point("a", 2, 2, day1+60),
		point("a", 8, 8, day1+86400), // next day
		point("b", 1.5, 1.5, day1+3600),
		point("c", 9, 9, day1+7200),
	}
	n, err := repo.Import(1, points)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}

func TestTrackTotals(t *testing.T) {
	repo := NewTrackRepository(newDB(t))
	seedTracks(t, repo)

	totals, err := repo.Totals(1, models.DefaultTimeFilter())
	require.NoError(t, err)
	assert.Equal(t, models.Totals{Tracks: 5, UniqueVisitors: 3, VisitorDays: 4}, totals)

	f := models.DefaultTimeFilter()
	f.StartDate, f.EndDate = "2024-03-01", "2024-03-01"
	totals, err = repo.Totals(1, f)
	require.NoError(t, err)
	assert.Equal(t, int64(4), totals.Tracks)

	f = models.DefaultTimeFilter()
	f.StartHour, f.EndHour = 11, 11
	totals, err = repo.Totals(1, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Tracks, "only b at 11:00")
}

func TestTrackInvertedHourRange(t *testing.T) {
	repo := NewTrackRepository(newDB(t))
	_, err := repo.Import(1, []models.TrackPoint{
		point("late", 0, 0, day1+13*3600), // 23:00
		point("early", 0, 0, day1-9*3600), // 01:00
		point("noon", 0, 0, day1+2*3600),  // 12:00
	})
	require.NoError(t, err)

	f := models.DefaultTimeFilter()
	f.StartHour, f.EndHour = 22, 2
	totals, err := repo.Totals(1, f)
	require.NoError(t, err)
	assert.Zero(t, totals.Tracks, "start after end does not wrap past midnight")

	points, _, err := repo.RawPoints(1, f, 10)
	require.NoError(t, err)
	assert.Empty(t, points)

	f.StartHour, f.EndHour = 22, 23
	totals, err = repo.Totals(1, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Tracks)
}

func TestRawPointsSampling(t *testing.T) {
	repo := NewTrackRepository(newDB(t))
	seedTracks(t, repo)

	all, sampled, err := repo.RawPoints(1, models.DefaultTimeFilter(), 10)
	require.NoError(t, err)
	assert.False(t, sampled)
	assert.Len(t, all, 5)
	assert.Contains(t, all, r2.Point{X: 1.5, Y: 1.5})

	some, sampled, err := repo.RawPoints(1, models.DefaultTimeFilter(), 2)
	require.NoError(t, err)
	assert.True(t, sampled)
	assert.Len(t, some, 2)

	none, _, err := repo.RawPoints(2, models.DefaultTimeFilter(), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestScanOrdersByVisitorAndTime(t *testing.T) {
	repo := NewTrackRepository(newDB(t))
	seedTracks(t, repo)

	var seen []string
	err := repo.Scan(1, models.DefaultTimeFilter(), func(p models.TrackPoint) error {
		seen = append(seen, p.HashID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a", "a", "b", "c"}, seen)
}

func TestZoneStatsAndCoverage(t *testing.T) {
	repo := NewTrackRepository(newDB(t))
	seedTracks(t, repo)
	offset := r2.Point{X: 100, Y: 200}

	// data space corners, unordered
	z := models.Zone{ID: 7, Name: "Entrance", X1: 103, Y1: 203, X2: 100, Y2: 200}
	stats, err := repo.ZoneStats(1, models.DefaultTimeFilter(), z, offset)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TrackCount)
	assert.Equal(t, int64(2), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.VisitorDays)
	assert.Equal(t, "Entrance", stats.ZoneName)

	cov, err := repo.Coverage(1, models.DefaultTimeFilter(), []models.Zone{z}, offset)
	require.NoError(t, err)
	assert.Equal(t, models.ZoneCoverage{
		TotalVisitors:        3,
		VisitorsInZones:      2,
		VisitorsOutsideZones: 1,
		CoveragePct:          66.7,
	}, cov)

	cov, err = repo.Coverage(1, models.DefaultTimeFilter(), nil, offset)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cov.VisitorsOutsideZones)
	assert.Zero(t, cov.CoveragePct)
}

func TestFloors(t *testing.T) {
	db := newDB(t)
	repo := NewTrackRepository(db)
	seedTracks(t, repo)

	plans := NewFloorPlanRepository(db)
	_, err := plans.Save(models.NewFloorPlan(1, 2))
	require.NoError(t, err)

	floors, err := repo.Floors(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, floors)
}

func TestFloorPlanRoundTripsAlignment(t *testing.T) {
	db := newDB(t)
	_, err := NewTrackRepository(db).Import(1, nil)
	require.NoError(t, err)
	repo := NewFloorPlanRepository(db)

	missing, err := repo.Get(1, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	fp := models.NewFloorPlan(1, 0)
	fp.SetAlignment(transform.NewAffine(1, 0.1, -0.1, 1, 5, 6))
	saved, err := repo.Save(fp)
	require.NoError(t, err)
	require.True(t, saved.HasAffine())
	assert.Equal(t, transform.ModeAffine, saved.Alignment().Mode())
	assert.Equal(t, 5.0, *saved.AffineTx)

	saved.SetAlignment(transform.Simple{OffsetX: 2, ScaleX: 1.5, ScaleY: 1, Rotation: 10})
	saved, err = repo.Save(*saved)
	require.NoError(t, err)
	assert.False(t, saved.HasAffine())
	assert.Equal(t, transform.Simple{OffsetX: 2, ScaleX: 1.5, ScaleY: 1, Rotation: 10}, saved.Alignment())

	list, err := repo.List(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(1, 0))
	assert.ErrorIs(t, repo.Delete(1, 0), ErrNotFound)
}

func TestZoneCRUD(t *testing.T) {
	db := newDB(t)
	require.NoError(t, NewStoreRepository(db).Save(models.StoreCreate{StoreID: 1, Name: "Main"}))
	repo := NewZoneRepository(db)

	a, err := repo.Create(models.ZoneCreate{StoreID: 1, Floor: 0, Name: "A", X1: 0, Y1: 0, X2: 10, Y2: 10})
	require.NoError(t, err)
	b, err := repo.Create(models.ZoneCreate{StoreID: 1, Floor: 1, Name: "B", X1: 5, Y1: 5, X2: 6, Y2: 6})
	require.NoError(t, err)

	all, err := repo.List(1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	floor := 1
	upstairs, err := repo.List(1, &floor)
	require.NoError(t, err)
	require.Len(t, upstairs, 1)
	assert.Equal(t, "B", upstairs[0].Name)

	many, err := repo.GetMany(1, []int64{b.ID, 999, a.ID})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	a.Name = "Tills"
	require.NoError(t, repo.Update(*a))
	got, err := repo.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tills", got.Name)

	require.NoError(t, repo.Delete(a.ID))
	assert.ErrorIs(t, repo.Delete(a.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(*a), ErrNotFound)

	gone, err := repo.Get(a.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestStores(t *testing.T) {
	repo := NewStoreRepository(newDB(t))
	require.NoError(t, repo.Save(models.StoreCreate{StoreID: 2, Name: "Beta"}))
	require.NoError(t, repo.Save(models.StoreCreate{StoreID: 1, Name: "Alpha", Country: "SE"}))

	stores, err := repo.List()
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "Alpha", stores[0].Name)
	assert.Equal(t, "Unknown", stores[1].Country)

	s, err := repo.Get(3)
	require.NoError(t, err)
	assert.Nil(t, s)
}
