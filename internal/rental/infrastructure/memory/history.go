package memory

import (
	"context"
	"sync"

	rental "venue-pos/internal/rental/domain"
)

// HistoryRepository is an in-memory session history store.
type HistoryRepository struct {
	mu      sync.RWMutex
	records []rental.SessionRecord
}

// NewHistoryRepository constructs an empty repository.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// Insert stores a session record.
func (r *HistoryRepository) Insert(ctx context.Context, record rental.SessionRecord) error {
	_ = ctx
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return nil
}

// List returns records in insertion order.
func (r *HistoryRepository) List(ctx context.Context) ([]rental.SessionRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]rental.SessionRecord, len(r.records))
	copy(result, r.records)
	return result, nil
}
