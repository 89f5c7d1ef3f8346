package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalog "venue-pos/internal/catalog/domain"
	inventory "venue-pos/internal/inventory/domain"
	"venue-pos/internal/money"
	"venue-pos/internal/observability/metrics"
	rental "venue-pos/internal/rental/domain"
	salesapp "venue-pos/internal/sales/application"
	sales "venue-pos/internal/sales/domain"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RateSource resolves devices and their current hourly rates.
type RateSource interface {
	Get(name string) (catalog.Device, error)
}

// SaleRecorder appends sale records on session close.
type SaleRecorder interface {
	Record(ctx context.Context, req salesapp.RecordRequest) (sales.Record, error)
}

// StockDebiter debits inventory stock for sold snack items.
type StockDebiter interface {
	DebitByLabel(ctx context.Context, label string, quantity int) (inventory.Item, error)
}

// ActiveSession is an open session with its running elapsed time.
type ActiveSession struct {
	rental.Session
	ElapsedMinutes int `json:"elapsed_minutes"`
}

// CloseResult is the finalized sale batch produced by a close: the
// device-usage record first, then snack records in attach order.
type CloseResult struct {
	Records         []sales.Record `json:"records"`
	Total           money.Money    `json:"total"`
	DurationMinutes int            `json:"duration"`
	Charge          money.Money    `json:"charge"`
}

// Engine drives rental sessions from open to close. Close is a
// multi-step, non-transactional operation: applied effects are never
// rolled back, per-step failures are joined and surfaced to the caller.
type Engine struct {
	open     rental.OpenSessionRepository
	history  rental.HistoryRepository
	rates    RateSource
	recorder SaleRecorder
	stock    StockDebiter
	clock    Clock
}

// NewEngine constructs a rental engine.
func NewEngine(open rental.OpenSessionRepository, history rental.HistoryRepository, rates RateSource, recorder SaleRecorder, stock StockDebiter, clock Clock) (*Engine, error) {
	if open == nil {
		return nil, errors.New("rental: nil open-session repo")
	}
	if history == nil {
		return nil, errors.New("rental: nil history repo")
	}
	if rates == nil {
		return nil, errors.New("rental: nil rate source")
	}
	if recorder == nil {
		return nil, errors.New("rental: nil sale recorder")
	}
	if stock == nil {
		return nil, errors.New("rental: nil stock debiter")
	}
	if clock == nil {
		return nil, errors.New("rental: nil clock")
	}
	return &Engine{open: open, history: history, rates: rates, recorder: recorder, stock: stock, clock: clock}, nil
}

// Open starts a session on a device, snapshotting its current rate.
func (e *Engine) Open(ctx context.Context, deviceName string) (rental.Session, error) {
	device, err := e.rates.Get(deviceName)
	if err != nil {
		return rental.Session{}, err
	}
	session := rental.NewSession(device, e.clock.Now())
	if err := e.open.Open(ctx, session); err != nil {
		return rental.Session{}, err
	}
	metrics.SessionOpened()
	return session, nil
}

// Attach adds a line item to the device's open session and returns the
// updated line-item sequence.
func (e *Engine) Attach(ctx context.Context, deviceName, item string, quantity int, unitPrice money.Money) ([]rental.LineItem, error) {
	lineItem, err := rental.NewLineItem(item, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	session, err := e.open.Attach(ctx, deviceName, lineItem)
	if err != nil {
		return nil, err
	}
	return session.Items, nil
}

// Close finalizes the device's open session: bills the usage time,
// flushes line items into the sale log, debits snack stock, records
// history and removes the session from the open set. There is no
// cross-step transaction; see CloseResult and the returned error for
// partial outcomes.
func (e *Engine) Close(ctx context.Context, deviceName string) (CloseResult, error) {
	session, err := e.open.Get(ctx, deviceName)
	if err != nil {
		return CloseResult{}, err
	}

	endedAt := e.clock.Now()
	minutes := rental.DurationMinutes(session.StartedAt, endedAt)
	charge := rental.Charge(session.HourlyRate, minutes)

	result := CloseResult{DurationMinutes: minutes, Charge: charge}

	// Device-usage sale first. If this very first step fails the close
	// aborts with nothing applied and the session stays open for retry.
	usage, err := e.recorder.Record(ctx, salesapp.RecordRequest{
		Category: string(session.Category),
		Item:     session.Device,
		Quantity: 1,
		Price:    charge,
	})
	if err != nil {
		return CloseResult{}, fmt.Errorf("close %s: device sale: %w", deviceName, err)
	}
	result.Records = append(result.Records, usage)
	result.Total += usage.Price

	var stepErrs []error
	billSnacks := func(items []rental.LineItem) {
		for _, item := range items {
			record, err := e.recorder.Record(ctx, salesapp.RecordRequest{
				Category: sales.CategorySnack,
				Item:     item.Item,
				Quantity: item.Quantity,
				Price:    item.Subtotal,
			})
			if err != nil {
				stepErrs = append(stepErrs, fmt.Errorf("snack sale %s: %w", item.Item, err))
				continue
			}
			result.Records = append(result.Records, record)
			result.Total += record.Price

			if _, err := e.stock.DebitByLabel(ctx, item.Item, item.Quantity); err != nil {
				stepErrs = append(stepErrs, fmt.Errorf("stock debit %s: %w", item.Item, err))
			}
		}
	}
	billSnacks(session.Items)

	historyRecord := rental.SessionRecord{
		ID:              uuid.NewString(),
		Device:          session.Device,
		StartedAt:       session.StartedAt,
		EndedAt:         endedAt,
		DurationMinutes: minutes,
		Charge:          charge,
		CreatedAt:       endedAt,
	}
	if err := e.history.Insert(ctx, historyRecord); err != nil {
		stepErrs = append(stepErrs, fmt.Errorf("session history: %w", err))
	}

	// Line items attached while the close was in flight must still be
	// billed: the conditional remove refuses while any are pending, and
	// the loop flushes them before retrying.
	seen := len(session.Items)
	for {
		err := e.open.Remove(ctx, deviceName, seen)
		if err == nil {
			break
		}
		if !errors.Is(err, rental.ErrItemsPending) {
			stepErrs = append(stepErrs, fmt.Errorf("remove open session: %w", err))
			break
		}
		latest, err := e.open.Get(ctx, deviceName)
		if err != nil {
			stepErrs = append(stepErrs, fmt.Errorf("remove open session: %w", err))
			break
		}
		billSnacks(latest.Items[seen:])
		seen = len(latest.Items)
	}

	if len(stepErrs) > 0 {
		metrics.SessionClosed("partial", minutes)
		return result, errors.Join(stepErrs...)
	}
	metrics.SessionClosed("success", minutes)
	return result, nil
}

// Elapsed reports the open session's age in minutes without mutating it.
func (e *Engine) Elapsed(ctx context.Context, deviceName string) (int, error) {
	session, err := e.open.Get(ctx, deviceName)
	if err != nil {
		return 0, err
	}
	return session.ElapsedMinutes(e.clock.Now()), nil
}

// ListActive returns open sessions with their elapsed minutes.
func (e *Engine) ListActive(ctx context.Context) ([]ActiveSession, error) {
	sessions, err := e.open.List(ctx)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	result := make([]ActiveSession, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, ActiveSession{Session: session, ElapsedMinutes: session.ElapsedMinutes(now)})
	}
	return result, nil
}

// CreateHistoryRecord stores a session record directly, independent of
// live session tracking.
func (e *Engine) CreateHistoryRecord(ctx context.Context, record rental.SessionRecord) (rental.SessionRecord, error) {
	if err := record.Validate(); err != nil {
		return rental.SessionRecord{}, err
	}
	record.ID = uuid.NewString()
	record.CreatedAt = e.clock.Now()
	if record.DurationMinutes == 0 {
		record.DurationMinutes = rental.DurationMinutes(record.StartedAt, record.EndedAt)
	}
	if err := e.history.Insert(ctx, record); err != nil {
		return rental.SessionRecord{}, err
	}
	return record, nil
}

// ListHistory returns finalized session records.
func (e *Engine) ListHistory(ctx context.Context) ([]rental.SessionRecord, error) {
	return e.history.List(ctx)
}
