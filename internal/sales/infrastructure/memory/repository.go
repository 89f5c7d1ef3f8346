package memory

import (
	"context"
	"sync"

	sales "venue-pos/internal/sales/domain"
)

// Repository is an in-memory append-only sale log.
type Repository struct {
	mu      sync.RWMutex
	records []sales.Record
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Append stores a record.
func (r *Repository) Append(ctx context.Context, record sales.Record) error {
	_ = ctx
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return nil
}

// ListAll returns records in insertion order.
func (r *Repository) ListAll(ctx context.Context) ([]sales.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]sales.Record, len(r.records))
	copy(result, r.records)
	return result, nil
}

// ListByCategory returns records matching the category exactly.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]sales.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []sales.Record
	for _, record := range r.records {
		if record.Category == category {
			result = append(result, record)
		}
	}
	return result, nil
}
