package catalog

import "venue-pos/internal/money"

// Category classifies a billable device.
type Category string

const (
	CategoryPC      Category = "PC"
	CategoryPS4     Category = "PS4"
	CategoryPS5     Category = "PS5"
	CategoryBilardo Category = "Bilardo"
)

// Device is a billable station. Identity is the unique name; the hourly
// rate is mutable by configuration, never by the rental engine.
type Device struct {
	Name       string      `json:"name" yaml:"name"`
	Category   Category    `json:"category" yaml:"category"`
	HourlyRate money.Money `json:"hourly_rate" yaml:"hourly_rate"`
}

// Validate checks device fields.
func (d Device) Validate() error {
	if d.Name == "" {
		return ErrEmptyDeviceName
	}
	if d.Category == "" {
		return ErrEmptyCategory
	}
	if d.HourlyRate < 0 {
		return ErrNegativeRate
	}
	return nil
}

// DefaultDevices is the venue's built-in station list, used when no
// catalog file is configured.
func DefaultDevices() []Device {
	return []Device{
		{Name: "PS5 #1", Category: CategoryPS5, HourlyRate: money.FromUnits(18000)},
		{Name: "PS5 #2", Category: CategoryPS5, HourlyRate: money.FromUnits(18000)},
		{Name: "PS4 #1", Category: CategoryPS4, HourlyRate: money.FromUnits(12000)},
		{Name: "PS4 #2", Category: CategoryPS4, HourlyRate: money.FromUnits(12000)},
		{Name: "PC #1", Category: CategoryPC, HourlyRate: money.FromUnits(10000)},
		{Name: "PC #2", Category: CategoryPC, HourlyRate: money.FromUnits(10000)},
		{Name: "PC #3", Category: CategoryPC, HourlyRate: money.FromUnits(10000)},
		{Name: "PC #4", Category: CategoryPC, HourlyRate: money.FromUnits(10000)},
		{Name: "PC #5", Category: CategoryPC, HourlyRate: money.FromUnits(10000)},
		{Name: "PC #6", Category: CategoryPC, HourlyRate: money.FromUnits(10000)},
		{Name: "Bilardo Table", Category: CategoryBilardo, HourlyRate: money.FromUnits(30000)},
	}
}
