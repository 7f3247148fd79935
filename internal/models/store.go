package models

// Store is a physical shop with one or more tracked floors
type Store struct {
	StoreID int64  `json:"store_id" db:"id"`
	Name    string `json:"name" db:"name"`
	Country string `json:"country" db:"country"`
	Floors  []int  `json:"floors"`
}

// StoreCreate is the request body for registering a store
type StoreCreate struct {
	StoreID int64  `json:"store_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Country string `json:"country"`
}
