package inventory

import (
	"context"

	"venue-pos/internal/money"
)

// Repository persists inventory items. AdjustStock implementations must
// apply the delta as a single atomic read-modify-write per item so two
// concurrent debits cannot both pass a stale non-negative check.
type Repository interface {
	Add(ctx context.Context, item Item) error
	Get(ctx context.Context, id string) (Item, error)
	GetByLabel(ctx context.Context, label string) (Item, error)
	List(ctx context.Context) ([]Item, error)
	AdjustStock(ctx context.Context, id string, delta int) (Item, error)
	AdjustStockByLabel(ctx context.Context, label string, delta int) (Item, error)
	SetPrice(ctx context.Context, id string, price money.Money) (Item, error)
	Remove(ctx context.Context, id string) error
}
