package rental

import "errors"

var (
	// ErrDeviceBusy is returned when a device already has an open session.
	ErrDeviceBusy = errors.New("rental: device already has an open session")
	// ErrSessionNotFound is returned when no open session exists for a device.
	ErrSessionNotFound = errors.New("rental: no open session for device")
	// ErrItemsPending is returned by Remove when the session gained line
	// items after the caller last read it.
	ErrItemsPending = errors.New("rental: session has unbilled line items")
	// ErrEmptyItem is returned when a line item has no label.
	ErrEmptyItem = errors.New("rental: empty line item")
	// ErrInvalidQuantity is returned when a line item quantity is not positive.
	ErrInvalidQuantity = errors.New("rental: quantity must be positive")
	// ErrInvalidPrice is returned when a line item price is negative.
	ErrInvalidPrice = errors.New("rental: price cannot be negative")
	// ErrInvalidTimeRange is returned when a history record ends before it starts.
	ErrInvalidTimeRange = errors.New("rental: end must not precede start")
)
