package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/database"
	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/spatial"
)

// TrackRepository handles database operations for track points
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// trackConditions builds the WHERE clause shared by every track query.
// Hours are inclusive; start > end matches nothing.
func trackConditions(storeID int64, f models.TimeFilter) ([]string, []interface{}) {
	conditions := []string{"store_id = ?", "floor = ?"}
	args := []interface{}{storeID, f.Floor}

	if f.StartDate != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, f.EndDate)
	}
	if f.StartHour > 0 || f.EndHour < 23 {
		conditions = append(conditions, "hour BETWEEN ? AND ?")
		args = append(args, f.StartHour, f.EndHour)
	}
	return conditions, args
}

// zoneCondition matches raw coordinates inside z, whose corners are in data
// space (raw + offset)
func zoneCondition(z models.Zone, offset r2.Point) (string, []interface{}) {
	r := spatial.RectFromCorners(z.X1, z.Y1, z.X2, z.Y2)
	return "(longitude BETWEEN ? AND ? AND latitude BETWEEN ? AND ?)", []interface{}{
		r.X.Lo - offset.X, r.X.Hi - offset.X,
		r.Y.Lo - offset.Y, r.Y.Hi - offset.Y,
	}
}

// Totals counts rows, unique visitors and visitor-days for a filter
func (r *TrackRepository) Totals(storeID int64, f models.TimeFilter) (models.Totals, error) {
	conditions, args := trackConditions(storeID, f)
	query := `SELECT COUNT(*), COUNT(DISTINCT hash_id), COUNT(DISTINCT hash_id || '-' || date)
		FROM track_points WHERE ` + strings.Join(conditions, " AND ")

	var t models.Totals
	if err := r.db.QueryRow(query, args...).Scan(&t.Tracks, &t.UniqueVisitors, &t.VisitorDays); err != nil {
		return models.Totals{}, fmt.Errorf("failed to count track points: %w", err)
	}
	return t, nil
}

// RawPoints returns raw (longitude, latitude) positions. When more than limit
// rows match, a random sample of limit rows is returned.
func (r *TrackRepository) RawPoints(storeID int64, f models.TimeFilter, limit int) ([]r2.Point, bool, error) {
	conditions, args := trackConditions(storeID, f)
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM track_points WHERE "+where, args...).Scan(&total); err != nil {
		return nil, false, fmt.Errorf("failed to count track points: %w", err)
	}

	query := "SELECT longitude, latitude FROM track_points WHERE " + where
	sampled := limit > 0 && total > int64(limit)
	if sampled {
		query += " ORDER BY RANDOM() LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query track points: %w", err)
	}
	defer rows.Close()

	points := make([]r2.Point, 0, min(total, int64(max(limit, 0))))
	for rows.Next() {
		var p r2.Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, false, fmt.Errorf("failed to scan track point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read track points: %w", err)
	}
	return points, sampled, nil
}

// Scan streams matching points ordered by visitor then time
func (r *TrackRepository) Scan(storeID int64, f models.TimeFilter, fn func(models.TrackPoint) error) error {
	conditions, args := trackConditions(storeID, f)
	query := `SELECT hash_id, latitude, longitude, timestamp, date, hour
		FROM track_points WHERE ` + strings.Join(conditions, " AND ") +
		" ORDER BY hash_id, timestamp"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query track points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := models.TrackPoint{StoreID: storeID, Floor: f.Floor}
		if err := rows.Scan(&p.HashID, &p.Latitude, &p.Longitude, &p.Timestamp, &p.Date, &p.Hour); err != nil {
			return fmt.Errorf("failed to scan track point: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ZoneStats counts tracks, unique visitors and visitor-days inside z
func (r *TrackRepository) ZoneStats(storeID int64, f models.TimeFilter, z models.Zone, offset r2.Point) (models.ZoneStats, error) {
	conditions, args := trackConditions(storeID, f)
	cond, zargs := zoneCondition(z, offset)
	conditions = append(conditions, cond)
	args = append(args, zargs...)

	query := `SELECT COUNT(*), COUNT(DISTINCT hash_id), COUNT(DISTINCT hash_id || '-' || date)
		FROM track_points WHERE ` + strings.Join(conditions, " AND ")

	stats := models.ZoneStats{ZoneID: z.ID, ZoneName: z.Name}
	if err := r.db.QueryRow(query, args...).Scan(&stats.TrackCount, &stats.UniqueVisitors, &stats.VisitorDays); err != nil {
		return models.ZoneStats{}, fmt.Errorf("failed to query zone %d stats: %w", z.ID, err)
	}
	return stats, nil
}

// Coverage counts visitors seen in at least one of zones
func (r *TrackRepository) Coverage(storeID int64, f models.TimeFilter, zones []models.Zone, offset r2.Point) (models.ZoneCoverage, error) {
	conditions, args := trackConditions(storeID, f)
	where := strings.Join(conditions, " AND ")

	var cov models.ZoneCoverage
	if err := r.db.QueryRow("SELECT COUNT(DISTINCT hash_id) FROM track_points WHERE "+where, args...).Scan(&cov.TotalVisitors); err != nil {
		return models.ZoneCoverage{}, fmt.Errorf("failed to count visitors: %w", err)
	}

	if len(zones) > 0 {
		var ors []string
		inArgs := append([]interface{}{}, args...)
		for _, z := range zones {
			cond, zargs := zoneCondition(z, offset)
			ors = append(ors, cond)
			inArgs = append(inArgs, zargs...)
		}
		query := "SELECT COUNT(DISTINCT hash_id) FROM track_points WHERE " + where +
			" AND (" + strings.Join(ors, " OR ") + ")"
		if err := r.db.QueryRow(query, inArgs...).Scan(&cov.VisitorsInZones); err != nil {
			return models.ZoneCoverage{}, fmt.Errorf("failed to count visitors in zones: %w", err)
		}
	}

	cov.VisitorsOutsideZones = cov.TotalVisitors - cov.VisitorsInZones
	if cov.TotalVisitors > 0 {
		cov.CoveragePct = spatial.Round1(float64(cov.VisitorsInZones) / float64(cov.TotalVisitors) * 100)
	}
	return cov, nil
}

// Floors lists the floors with track data for a store
func (r *TrackRepository) Floors(storeID int64) ([]int, error) {
	rows, err := r.db.Query(`SELECT floor FROM track_points WHERE store_id = ?
		UNION SELECT floor FROM floorplans WHERE store_id = ?
		ORDER BY floor`, storeID, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query floors: %w", err)
	}
	defer rows.Close()

	floors := []int{}
	for rows.Next() {
		var floor int
		if err := rows.Scan(&floor); err != nil {
			return nil, fmt.Errorf("failed to scan floor: %w", err)
		}
		floors = append(floors, floor)
	}
	return floors, rows.Err()
}

// Import inserts points in one transaction, registering the store if it is
// unknown
func (r *TrackRepository) Import(storeID int64, points []models.TrackPoint) (int64, error) {
	var inserted int64
	err := database.WithTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO stores (id, name) VALUES (?, ?)`,
			storeID, fmt.Sprintf("Store %d", storeID)); err != nil {
			return fmt.Errorf("failed to register store: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO track_points
			(hash_id, store_id, floor, latitude, longitude, timestamp, date, hour, uncertainty)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.Exec(p.HashID, storeID, p.Floor, p.Latitude, p.Longitude,
				p.Timestamp, p.Date, p.Hour, p.Uncertainty); err != nil {
				return fmt.Errorf("failed to insert track point: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
