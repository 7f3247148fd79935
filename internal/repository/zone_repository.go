package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/floorheat-backend-go/internal/models"
)

const zoneColumns = "id, store_id, floor, name, x1, y1, x2, y2, COALESCE(created_at, '')"

// ZoneRepository handles database operations for zones
type ZoneRepository struct {
	db *sql.DB
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(db *sql.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

func scanZone(row rowScanner) (*models.Zone, error) {
	var z models.Zone
	if err := row.Scan(&z.ID, &z.StoreID, &z.Floor, &z.Name, &z.X1, &z.Y1, &z.X2, &z.Y2, &z.CreatedAt); err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *ZoneRepository) query(query string, args ...interface{}) ([]models.Zone, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

// List retrieves the zones of a store, optionally limited to one floor
func (r *ZoneRepository) List(storeID int64, floor *int) ([]models.Zone, error) {
	query := "SELECT " + zoneColumns + " FROM zones WHERE store_id = ?"
	args := []interface{}{storeID}
	if floor != nil {
		query += " AND floor = ?"
		args = append(args, *floor)
	}
	return r.query(query+" ORDER BY id", args...)
}

// GetMany retrieves the zones with the given ids belonging to a store, in id
// order. Unknown ids are skipped.
func (r *ZoneRepository) GetMany(storeID int64, ids []int64) ([]models.Zone, error) {
	if len(ids) == 0 {
		return []models.Zone{}, nil
	}
	placeholders := make([]string, len(ids))
	args := []interface{}{storeID}
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := "SELECT " + zoneColumns + " FROM zones WHERE store_id = ? AND id IN (" +
		strings.Join(placeholders, ", ") + ") ORDER BY id"
	return r.query(query, args...)
}

// Get retrieves a zone by id, or nil if it does not exist
func (r *ZoneRepository) Get(id int64) (*models.Zone, error) {
	z, err := scanZone(r.db.QueryRow("SELECT "+zoneColumns+" FROM zones WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return z, nil
}

// Create inserts a zone and returns it with its id
func (r *ZoneRepository) Create(in models.ZoneCreate) (*models.Zone, error) {
	res, err := r.db.Exec("INSERT INTO zones (store_id, floor, name, x1, y1, x2, y2) VALUES (?, ?, ?, ?, ?, ?, ?)",
		in.StoreID, in.Floor, in.Name, in.X1, in.Y1, in.X2, in.Y2)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read zone id: %w", err)
	}
	return r.Get(id)
}

// Update writes name and corners of z
func (r *ZoneRepository) Update(z models.Zone) error {
	res, err := r.db.Exec("UPDATE zones SET name = ?, x1 = ?, y1 = ?, x2 = ?, y2 = ? WHERE id = ?",
		z.Name, z.X1, z.Y1, z.X2, z.Y2, z.ID)
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}
	return requireRow(res)
}

// Delete removes a zone
func (r *ZoneRepository) Delete(id int64) error {
	res, err := r.db.Exec("DELETE FROM zones WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
