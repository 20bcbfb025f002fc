package domain

import "time"

type KeyStatus string

const (
	KeyStatusAvailable KeyStatus = "available"
	KeyStatusSold      KeyStatus = "sold"
)

// StockKey is one unit of sellable inventory: a single-use secret string.
// A key transitions available -> sold exactly once and never reverses.
type StockKey struct {
	ID        int64
	ProductID int64
	KeyText   string
	Status    KeyStatus
	SoldAt    *time.Time
}
