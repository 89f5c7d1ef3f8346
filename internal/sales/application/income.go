package application

import (
	"context"
	"errors"
	"time"

	"venue-pos/internal/money"
	"venue-pos/internal/observability/metrics"
	sales "venue-pos/internal/sales/domain"
)

// Period is an income aggregation window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// IncomeSummary is the result of an income aggregation.
type IncomeSummary struct {
	TotalIncome money.Money `json:"totalIncome"`
	Count       int         `json:"count"`
}

// IncomeService answers income queries by scanning the full sale log.
// Record volume at a single venue is small enough that no time index
// is kept; correctness does not depend on one.
type IncomeService struct {
	repo     sales.Repository
	clock    Clock
	location *time.Location
}

// NewIncomeService constructs an income service. The location defines
// the venue's local day/month/year boundaries.
func NewIncomeService(repo sales.Repository, clock Clock, location *time.Location) (*IncomeService, error) {
	if repo == nil {
		return nil, errors.New("income: nil repo")
	}
	if clock == nil {
		return nil, errors.New("income: nil clock")
	}
	if location == nil {
		location = time.Local
	}
	return &IncomeService{repo: repo, clock: clock, location: location}, nil
}

// WindowStart returns the inclusive start of the period containing now.
func (s *IncomeService) WindowStart(period Period, now time.Time) (time.Time, error) {
	local := now.In(s.location)
	switch period {
	case PeriodDay:
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location), nil
	case PeriodMonth:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.location), nil
	case PeriodYear:
		return time.Date(local.Year(), 1, 1, 0, 0, 0, 0, s.location), nil
	default:
		return time.Time{}, sales.ErrInvalidPeriod
	}
}

// IncomeForWindow sums prices over records with timestamp at or after
// the window start.
func (s *IncomeService) IncomeForWindow(ctx context.Context, period Period) (IncomeSummary, error) {
	windowStart, err := s.WindowStart(period, s.clock.Now())
	if err != nil {
		return IncomeSummary{}, err
	}
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return IncomeSummary{}, err
	}
	metrics.IncomeQueried(string(period))

	var summary IncomeSummary
	for _, record := range records {
		if record.Timestamp.Before(windowStart) {
			continue
		}
		summary.TotalIncome += record.Price
		summary.Count++
	}
	return summary, nil
}

// IncomeForCategory sums prices over all records of one category, with
// no time window.
func (s *IncomeService) IncomeForCategory(ctx context.Context, category string) (IncomeSummary, error) {
	if category == "" {
		return IncomeSummary{}, sales.ErrMissingField
	}
	records, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return IncomeSummary{}, err
	}
	metrics.IncomeQueried("category")

	var summary IncomeSummary
	for _, record := range records {
		summary.TotalIncome += record.Price
		summary.Count++
	}
	return summary, nil
}

// RecordsSince returns records at or after the window start, used by
// the report exports.
func (s *IncomeService) RecordsSince(ctx context.Context, period Period) ([]sales.Record, time.Time, error) {
	windowStart, err := s.WindowStart(period, s.clock.Now())
	if err != nil {
		return nil, time.Time{}, err
	}
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	var result []sales.Record
	for _, record := range records {
		if !record.Timestamp.Before(windowStart) {
			result = append(result, record)
		}
	}
	return result, windowStart, nil
}
