package sales

import "errors"

var (
	// ErrMissingField is returned when category or item is empty.
	ErrMissingField = errors.New("sales: missing category or item")
	// ErrInvalidQuantity is returned when quantity is not positive.
	ErrInvalidQuantity = errors.New("sales: quantity must be positive")
	// ErrInvalidPrice is returned when price is negative.
	ErrInvalidPrice = errors.New("sales: price cannot be negative")
	// ErrInvalidPeriod is returned for an unknown income window.
	ErrInvalidPeriod = errors.New("sales: period must be day, month or year")
)
