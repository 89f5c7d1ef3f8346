package rental

import (
	"context"
	"time"

	"venue-pos/internal/money"
)

// SessionRecord is a finalized session kept for history and reporting.
// It is independent of live open-session tracking; there is no foreign
// key back to the sale log.
type SessionRecord struct {
	ID              string      `json:"id"`
	Device          string      `json:"deviceType"`
	StartedAt       time.Time   `json:"startTime"`
	EndedAt         time.Time   `json:"endTime"`
	DurationMinutes int         `json:"duration"`
	Charge          money.Money `json:"charge"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Validate checks history record fields.
func (r SessionRecord) Validate() error {
	if r.Device == "" {
		return ErrEmptyItem
	}
	if r.EndedAt.Before(r.StartedAt) {
		return ErrInvalidTimeRange
	}
	if r.DurationMinutes < 0 || r.Charge < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// HistoryRepository persists finalized session records.
type HistoryRepository interface {
	Insert(ctx context.Context, record SessionRecord) error
	List(ctx context.Context) ([]SessionRecord, error)
}
