package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/floorheat-backend-go/internal/models"
)

// StoreRepository handles database operations for stores
type StoreRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *sql.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// List retrieves all stores ordered by name. Floors are not filled in.
func (r *StoreRepository) List() ([]models.Store, error) {
	rows, err := r.db.Query("SELECT id, name, country FROM stores ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.StoreID, &s.Name, &s.Country); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// Get retrieves a store by id, or nil if it does not exist
func (r *StoreRepository) Get(id int64) (*models.Store, error) {
	var s models.Store
	err := r.db.QueryRow("SELECT id, name, country FROM stores WHERE id = ?", id).Scan(&s.StoreID, &s.Name, &s.Country)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &s, nil
}

// Save inserts or renames a store
func (r *StoreRepository) Save(in models.StoreCreate) error {
	country := in.Country
	if country == "" {
		country = "Unknown"
	}
	_, err := r.db.Exec(`INSERT INTO stores (id, name, country) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, country = excluded.country`,
		in.StoreID, in.Name, country)
	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}
