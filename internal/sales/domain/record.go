package sales

import (
	"context"
	"time"

	"venue-pos/internal/money"
)

// CategorySnack tags ancillary snack/drink sales.
const CategorySnack = "Snack"

// Record is an immutable sale fact: device usage or an item sale. It is
// never updated or deleted; all income analytics derive from it.
type Record struct {
	ID        string      `json:"id"`
	Category  string      `json:"category"`
	Item      string      `json:"item"`
	Quantity  int         `json:"amount"`
	Price     money.Money `json:"price"`
	Timestamp time.Time   `json:"timestamp"`
}

// Validate checks record fields before append.
func (r Record) Validate() error {
	if r.Category == "" || r.Item == "" {
		return ErrMissingField
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Repository is the append-only sale log. ListAll gives no ordering
// guarantee beyond insertion.
type Repository interface {
	Append(ctx context.Context, record Record) error
	ListAll(ctx context.Context) ([]Record, error)
	ListByCategory(ctx context.Context, category string) ([]Record, error)
}
