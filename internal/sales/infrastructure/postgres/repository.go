package postgres

import (
	"context"
	"database/sql"
	"errors"

	"venue-pos/internal/money"
	sales "venue-pos/internal/sales/domain"
)

// Repository persists the append-only sale log in postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts a sale record.
func (r *Repository) Append(ctx context.Context, record sales.Record) error {
	if r == nil || r.db == nil {
		return errors.New("sales repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sales (id, category, item, quantity, price_cents, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		record.ID, record.Category, record.Item, record.Quantity, record.Price.Cents(), record.Timestamp)
	return err
}

// ListAll returns all records in insertion order.
func (r *Repository) ListAll(ctx context.Context) ([]sales.Record, error) {
	return r.list(ctx, `
SELECT id, category, item, quantity, price_cents, recorded_at
FROM sales ORDER BY recorded_at ASC`)
}

// ListByCategory returns records matching the category exactly.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]sales.Record, error) {
	return r.list(ctx, `
SELECT id, category, item, quantity, price_cents, recorded_at
FROM sales WHERE category = $1 ORDER BY recorded_at ASC`, category)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]sales.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sales repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sales.Record
	for rows.Next() {
		var record sales.Record
		var priceCents int64
		if err := rows.Scan(&record.ID, &record.Category, &record.Item, &record.Quantity, &priceCents, &record.Timestamp); err != nil {
			return nil, err
		}
		record.Price = money.Money(priceCents)
		result = append(result, record)
	}
	return result, rows.Err()
}
