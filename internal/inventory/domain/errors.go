package inventory

import "errors"

var (
	// ErrEmptyLabel is returned when an item label is missing.
	ErrEmptyLabel = errors.New("inventory: empty item label")
	// ErrInvalidQuantity is returned when a quantity is out of range.
	ErrInvalidQuantity = errors.New("inventory: invalid quantity")
	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("inventory: invalid price")
	// ErrDuplicateItem is returned when a label already exists.
	ErrDuplicateItem = errors.New("inventory: duplicate item")
	// ErrNegativeStock is returned when an adjustment would drive stock
	// below zero. The item is left unchanged.
	ErrNegativeStock = errors.New("inventory: stock cannot go negative")
	// ErrItemNotFound is returned when an item id or label is unknown.
	ErrItemNotFound = errors.New("inventory: item not found")
)
