package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	inventory "venue-pos/internal/inventory/domain"
	"venue-pos/internal/money"
)

// Repository persists inventory items in postgres. Stock adjustments
// are a single guarded UPDATE so the non-negative check and the write
// are one atomic step.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a new item.
func (r *Repository) Add(ctx context.Context, item inventory.Item) error {
	if r == nil || r.db == nil {
		return errors.New("inventory repo: nil db")
	}
	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM inventory_items WHERE item = $1)`, item.Label).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return inventory.ErrDuplicateItem
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO inventory_items (id, item, stock, price_cents, low_stock_alert, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.Label, item.Stock, item.Price.Cents(), item.LowStockThreshold, item.CreatedAt, item.UpdatedAt)
	return err
}

// Get fetches an item by id.
func (r *Repository) Get(ctx context.Context, id string) (inventory.Item, error) {
	if r == nil || r.db == nil {
		return inventory.Item{}, errors.New("inventory repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, item, stock, price_cents, low_stock_alert, created_at, updated_at
FROM inventory_items WHERE id = $1`, id)
	return scanItem(row)
}

// GetByLabel fetches an item by label.
func (r *Repository) GetByLabel(ctx context.Context, label string) (inventory.Item, error) {
	if r == nil || r.db == nil {
		return inventory.Item{}, errors.New("inventory repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, item, stock, price_cents, low_stock_alert, created_at, updated_at
FROM inventory_items WHERE item = $1`, label)
	return scanItem(row)
}

// List returns all items ordered by label.
func (r *Repository) List(ctx context.Context) ([]inventory.Item, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inventory repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, item, stock, price_cents, low_stock_alert, created_at, updated_at
FROM inventory_items ORDER BY item ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// AdjustStock applies a stock delta; the WHERE clause rejects any
// update that would leave stock negative.
func (r *Repository) AdjustStock(ctx context.Context, id string, delta int) (inventory.Item, error) {
	return r.adjust(ctx, "id", id, delta)
}

// AdjustStockByLabel applies a stock delta addressed by label.
func (r *Repository) AdjustStockByLabel(ctx context.Context, label string, delta int) (inventory.Item, error) {
	return r.adjust(ctx, "item", label, delta)
}

func (r *Repository) adjust(ctx context.Context, column, key string, delta int) (inventory.Item, error) {
	if r == nil || r.db == nil {
		return inventory.Item{}, errors.New("inventory repo: nil db")
	}
	query := `
UPDATE inventory_items
SET stock = stock + $2, updated_at = $3
WHERE id = $1 AND stock + $2 >= 0
RETURNING id, item, stock, price_cents, low_stock_alert, created_at, updated_at`
	if column == "item" {
		query = `
UPDATE inventory_items
SET stock = stock + $2, updated_at = $3
WHERE item = $1 AND stock + $2 >= 0
RETURNING id, item, stock, price_cents, low_stock_alert, created_at, updated_at`
	}
	row := r.db.QueryRowContext(ctx, query, key, delta, time.Now().UTC())
	item, err := scanItem(row)
	if errors.Is(err, inventory.ErrItemNotFound) {
		// Distinguish "unknown item" from "would go negative".
		existsQuery := `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`
		if column == "item" {
			existsQuery = `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE item = $1)`
		}
		var exists bool
		if scanErr := r.db.QueryRowContext(ctx, existsQuery, key).Scan(&exists); scanErr != nil {
			return inventory.Item{}, scanErr
		}
		if exists {
			return inventory.Item{}, inventory.ErrNegativeStock
		}
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	return item, err
}

// SetPrice updates the unit price.
func (r *Repository) SetPrice(ctx context.Context, id string, price money.Money) (inventory.Item, error) {
	if r == nil || r.db == nil {
		return inventory.Item{}, errors.New("inventory repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
UPDATE inventory_items
SET price_cents = $2, updated_at = $3
WHERE id = $1
RETURNING id, item, stock, price_cents, low_stock_alert, created_at, updated_at`,
		id, price.Cents(), time.Now().UTC())
	return scanItem(row)
}

// Remove deletes an item unconditionally.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("inventory repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (inventory.Item, error) {
	var item inventory.Item
	var priceCents int64
	err := row.Scan(&item.ID, &item.Label, &item.Stock, &priceCents, &item.LowStockThreshold, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Item{}, inventory.ErrItemNotFound
	}
	if err != nil {
		return inventory.Item{}, err
	}
	item.Price = money.Money(priceCents)
	return item, nil
}
