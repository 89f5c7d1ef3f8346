package inventory

import (
	"time"

	"venue-pos/internal/money"
)

// DefaultLowStockThreshold is applied when an item is created without
// an explicit threshold. Advisory only; it never blocks a sale.
const DefaultLowStockThreshold = 5

// Item is a sellable inventory entry. Identity is the system-generated
// id; the label is unique among current items but historical sales keep
// referring to removed labels.
type Item struct {
	ID                string      `json:"id"`
	Label             string      `json:"item"`
	Stock             int         `json:"stock"`
	Price             money.Money `json:"price"`
	LowStockThreshold int         `json:"low_stock_alert"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Validate checks fields for item creation.
func (i Item) Validate() error {
	if i.Label == "" {
		return ErrEmptyLabel
	}
	if i.Stock < 0 {
		return ErrInvalidQuantity
	}
	if i.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// LowOnStock reports whether the item is at or below its threshold.
func (i Item) LowOnStock() bool {
	return i.Stock <= i.LowStockThreshold
}
