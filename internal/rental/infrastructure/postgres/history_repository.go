package postgres

import (
	"context"
	"database/sql"
	"errors"

	"venue-pos/internal/money"
	rental "venue-pos/internal/rental/domain"
)

// HistoryRepository persists finalized session records in postgres.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert stores a session record.
func (r *HistoryRepository) Insert(ctx context.Context, record rental.SessionRecord) error {
	if r == nil || r.db == nil {
		return errors.New("history repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO session_history (id, device, started_at, ended_at, duration_minutes, charge_cents, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		record.ID, record.Device, record.StartedAt, record.EndedAt, record.DurationMinutes, record.Charge.Cents(), record.CreatedAt)
	return err
}

// List returns session records, newest first.
func (r *HistoryRepository) List(ctx context.Context) ([]rental.SessionRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, device, started_at, ended_at, duration_minutes, charge_cents, created_at
FROM session_history ORDER BY ended_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []rental.SessionRecord
	for rows.Next() {
		var record rental.SessionRecord
		var chargeCents int64
		if err := rows.Scan(&record.ID, &record.Device, &record.StartedAt, &record.EndedAt, &record.DurationMinutes, &chargeCents, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.Charge = money.Money(chargeCents)
		result = append(result, record)
	}
	return result, rows.Err()
}
