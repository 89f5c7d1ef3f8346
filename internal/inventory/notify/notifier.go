package notify

import "context"

// LowStockAlert represents a low-stock notification payload.
type LowStockAlert struct {
	ItemID    string `json:"item_id"`
	Item      string `json:"item"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// Notifier sends low-stock notifications.
type Notifier interface {
	Notify(ctx context.Context, alert LowStockAlert) error
}
