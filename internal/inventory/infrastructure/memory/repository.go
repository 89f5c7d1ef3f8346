package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	inventory "venue-pos/internal/inventory/domain"
	"venue-pos/internal/money"
)

// Repository is an in-memory inventory store. The single mutex makes
// every stock adjustment an atomic read-modify-write.
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]inventory.Item
	byLabel map[string]string
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{
		byID:    make(map[string]inventory.Item),
		byLabel: make(map[string]string),
	}
}

// Add inserts a new item.
func (r *Repository) Add(ctx context.Context, item inventory.Item) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byLabel[item.Label]; exists {
		return inventory.ErrDuplicateItem
	}
	r.byID[item.ID] = item
	r.byLabel[item.Label] = item.ID
	return nil
}

// Get fetches an item by id.
func (r *Repository) Get(ctx context.Context, id string) (inventory.Item, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.byID[id]
	if !ok {
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	return item, nil
}

// GetByLabel fetches an item by label.
func (r *Repository) GetByLabel(ctx context.Context, label string) (inventory.Item, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byLabel[label]
	if !ok {
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	return r.byID[id], nil
}

// List returns items sorted by label.
func (r *Repository) List(ctx context.Context) ([]inventory.Item, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]inventory.Item, 0, len(r.byID))
	for _, item := range r.byID {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

// AdjustStock applies a stock delta atomically.
func (r *Repository) AdjustStock(ctx context.Context, id string, delta int) (inventory.Item, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adjustLocked(id, delta)
}

// AdjustStockByLabel applies a stock delta atomically, addressing the
// item by its label.
func (r *Repository) AdjustStockByLabel(ctx context.Context, label string, delta int) (inventory.Item, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byLabel[label]
	if !ok {
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	return r.adjustLocked(id, delta)
}

func (r *Repository) adjustLocked(id string, delta int) (inventory.Item, error) {
	item, ok := r.byID[id]
	if !ok {
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	newStock := item.Stock + delta
	if newStock < 0 {
		return inventory.Item{}, inventory.ErrNegativeStock
	}
	item.Stock = newStock
	item.UpdatedAt = time.Now().UTC()
	r.byID[id] = item
	return item, nil
}

// SetPrice updates the unit price.
func (r *Repository) SetPrice(ctx context.Context, id string, price money.Money) (inventory.Item, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[id]
	if !ok {
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	item.Price = price
	item.UpdatedAt = time.Now().UTC()
	r.byID[id] = item
	return item, nil
}

// Remove deletes an item unconditionally.
func (r *Repository) Remove(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[id]
	if !ok {
		return inventory.ErrItemNotFound
	}
	delete(r.byID, id)
	delete(r.byLabel, item.Label)
	return nil
}
