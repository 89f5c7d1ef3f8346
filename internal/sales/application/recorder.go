package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"venue-pos/internal/money"
	"venue-pos/internal/observability/metrics"
	sales "venue-pos/internal/sales/domain"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RecordRequest carries inputs for a sale append. The timestamp is
// always assigned server-side so analytics windows stay trustworthy.
type RecordRequest struct {
	Category string      `json:"category"`
	Item     string      `json:"item"`
	Quantity int         `json:"amount"`
	Price    money.Money `json:"price"`
}

// Recorder appends immutable sale records.
type Recorder struct {
	repo  sales.Repository
	clock Clock
}

// NewRecorder constructs a recorder.
func NewRecorder(repo sales.Repository, clock Clock) (*Recorder, error) {
	if repo == nil {
		return nil, errors.New("sales: nil repo")
	}
	if clock == nil {
		return nil, errors.New("sales: nil clock")
	}
	return &Recorder{repo: repo, clock: clock}, nil
}

// Record validates and appends one sale.
func (r *Recorder) Record(ctx context.Context, req RecordRequest) (sales.Record, error) {
	record := sales.Record{
		ID:        uuid.NewString(),
		Category:  req.Category,
		Item:      req.Item,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Timestamp: r.clock.Now(),
	}
	if err := record.Validate(); err != nil {
		return sales.Record{}, err
	}
	if err := r.repo.Append(ctx, record); err != nil {
		return sales.Record{}, err
	}
	metrics.SaleRecorded(record.Category)
	return record, nil
}

// ListAll returns every sale record.
func (r *Recorder) ListAll(ctx context.Context) ([]sales.Record, error) {
	return r.repo.ListAll(ctx)
}

// ListByCategory returns sale records for one category.
func (r *Recorder) ListByCategory(ctx context.Context, category string) ([]sales.Record, error) {
	return r.repo.ListByCategory(ctx, category)
}
