package catalog

import "errors"

var (
	// ErrEmptyDeviceName is returned when a device has no name.
	ErrEmptyDeviceName = errors.New("catalog: empty device name")
	// ErrEmptyCategory is returned when a device has no category.
	ErrEmptyCategory = errors.New("catalog: empty category")
	// ErrNegativeRate is returned when an hourly rate is negative.
	ErrNegativeRate = errors.New("catalog: negative hourly rate")
	// ErrDeviceNotFound is returned when a device name is unknown.
	ErrDeviceNotFound = errors.New("catalog: device not found")
	// ErrDuplicateDevice is returned when two devices share a name.
	ErrDuplicateDevice = errors.New("catalog: duplicate device name")
)
