package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	inventory "venue-pos/internal/inventory/domain"
	"venue-pos/internal/inventory/notify"
	"venue-pos/internal/money"
	"venue-pos/internal/observability/metrics"
)

// AddRequest carries inputs for item creation.
type AddRequest struct {
	Label             string      `json:"item"`
	Stock             int         `json:"stock"`
	Price             money.Money `json:"price"`
	LowStockThreshold *int        `json:"low_stock_alert,omitempty"`
}

// AdjustRequest carries a stock delta and/or a new price. Either field
// may be omitted.
type AdjustRequest struct {
	StockDelta *int         `json:"stock,omitempty"`
	Price      *money.Money `json:"price,omitempty"`
}

// Service owns inventory mutations and the advisory low-stock alert.
type Service struct {
	repo     inventory.Repository
	notifier notify.Notifier
	logger   *log.Logger
}

// Option configures the service.
type Option func(*Service)

// WithNotifier installs a low-stock notifier.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// NewService constructs an inventory service.
func NewService(repo inventory.Repository, logger *log.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("inventory: nil repo")
	}
	s := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddItem creates a new inventory item.
func (s *Service) AddItem(ctx context.Context, req AddRequest) (inventory.Item, error) {
	now := time.Now().UTC()
	item := inventory.Item{
		ID:                uuid.NewString(),
		Label:             req.Label,
		Stock:             req.Stock,
		Price:             req.Price,
		LowStockThreshold: inventory.DefaultLowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return inventory.Item{}, inventory.ErrInvalidQuantity
		}
		item.LowStockThreshold = *req.LowStockThreshold
	}
	if err := item.Validate(); err != nil {
		return inventory.Item{}, err
	}
	if err := s.repo.Add(ctx, item); err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

// Adjust applies a stock delta and/or price update to one item.
func (s *Service) Adjust(ctx context.Context, id string, req AdjustRequest) (inventory.Item, error) {
	if req.StockDelta == nil && req.Price == nil {
		return inventory.Item{}, inventory.ErrInvalidQuantity
	}
	// All fields validate before anything persists: a rejected request
	// must leave the item untouched.
	if req.Price != nil && *req.Price < 0 {
		return inventory.Item{}, inventory.ErrInvalidPrice
	}
	var item inventory.Item
	var err error
	if req.StockDelta != nil {
		item, err = s.repo.AdjustStock(ctx, id, *req.StockDelta)
		if err != nil {
			metrics.StockAdjusted("error")
			return inventory.Item{}, err
		}
		metrics.StockAdjusted("success")
		s.maybeAlertLowStock(ctx, item, *req.StockDelta)
	}
	if req.Price != nil {
		item, err = s.repo.SetPrice(ctx, id, *req.Price)
		if err != nil {
			return inventory.Item{}, err
		}
	}
	return item, nil
}

// DebitByLabel debits stock for a sold item, addressed by label. Used
// by the rental engine when a session closes.
func (s *Service) DebitByLabel(ctx context.Context, label string, quantity int) (inventory.Item, error) {
	if quantity <= 0 {
		return inventory.Item{}, inventory.ErrInvalidQuantity
	}
	item, err := s.repo.AdjustStockByLabel(ctx, label, -quantity)
	if err != nil {
		metrics.StockAdjusted("error")
		return inventory.Item{}, err
	}
	metrics.StockAdjusted("success")
	s.maybeAlertLowStock(ctx, item, -quantity)
	return item, nil
}

// RemoveItem deletes an item. Historical sale records keep referring
// to the label; that is intentional.
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	return s.repo.Remove(ctx, id)
}

// Get fetches one item by id.
func (s *Service) Get(ctx context.Context, id string) (inventory.Item, error) {
	return s.repo.Get(ctx, id)
}

// List returns all items.
func (s *Service) List(ctx context.Context) ([]inventory.Item, error) {
	return s.repo.List(ctx)
}

// maybeAlertLowStock fires the advisory webhook after a debit leaves an
// item at or below its threshold. Failures are logged, never surfaced.
func (s *Service) maybeAlertLowStock(ctx context.Context, item inventory.Item, delta int) {
	if s.notifier == nil || delta >= 0 || !item.LowOnStock() {
		return
	}
	alert := notify.LowStockAlert{
		ItemID:    item.ID,
		Item:      item.Label,
		Stock:     item.Stock,
		Threshold: item.LowStockThreshold,
	}
	if err := s.notifier.Notify(ctx, alert); err != nil && s.logger != nil {
		s.logger.Printf("low stock notify error: item=%s err=%v", item.Label, err)
	}
}
