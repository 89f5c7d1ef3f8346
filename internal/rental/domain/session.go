package rental

import (
	"context"
	"time"

	catalog "venue-pos/internal/catalog/domain"
	"venue-pos/internal/money"
)

// LineItem is a pending ancillary charge attached to an open session.
// Stock is not checked at attach time; reconciliation with inventory
// happens once, when the session closes.
type LineItem struct {
	Item      string      `json:"item"`
	Quantity  int         `json:"amount"`
	UnitPrice money.Money `json:"unit_price"`
	Subtotal  money.Money `json:"price"`
}

// Session is one open-to-close rental of a device. The hourly rate is
// snapshotted at open time; later catalog edits never affect it.
type Session struct {
	Device     string           `json:"device"`
	Category   catalog.Category `json:"category"`
	HourlyRate money.Money      `json:"hourly_rate"`
	StartedAt  time.Time        `json:"started_at"`
	Items      []LineItem       `json:"items"`
}

// NewSession opens a session against a catalog device.
func NewSession(device catalog.Device, startedAt time.Time) Session {
	return Session{
		Device:     device.Name,
		Category:   device.Category,
		HourlyRate: device.HourlyRate,
		StartedAt:  startedAt,
	}
}

// NewLineItem validates and builds a line item with its subtotal.
func NewLineItem(item string, quantity int, unitPrice money.Money) (LineItem, error) {
	if item == "" {
		return LineItem{}, ErrEmptyItem
	}
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPrice < 0 {
		return LineItem{}, ErrInvalidPrice
	}
	return LineItem{
		Item:      item,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.MulQuantity(quantity),
	}, nil
}

// ElapsedMinutes returns the session age in whole minutes, rounded.
func (s Session) ElapsedMinutes(now time.Time) int {
	return DurationMinutes(s.StartedAt, now)
}

// OpenSessionRepository tracks open sessions keyed by device. Open must
// enforce the one-open-session-per-device invariant atomically: two
// concurrent opens for the same device must not both succeed. Remove is
// conditional on seen, the line-item count the caller last read: an
// attach that races a close returns ErrItemsPending instead of dropping
// the item unbilled.
type OpenSessionRepository interface {
	Open(ctx context.Context, session Session) error
	Get(ctx context.Context, device string) (Session, error)
	Attach(ctx context.Context, device string, item LineItem) (Session, error)
	Remove(ctx context.Context, device string, seen int) error
	List(ctx context.Context) ([]Session, error)
}
