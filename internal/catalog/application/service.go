package application

import (
	"sync"

	catalog "venue-pos/internal/catalog/domain"
	"venue-pos/internal/money"
)

// Service holds the device catalog and serves rate lookups. Rate edits
// apply only to sessions opened afterwards; open sessions keep the rate
// snapshot taken at open time.
type Service struct {
	mu      sync.RWMutex
	devices map[string]catalog.Device
	order   []string
}

// NewService constructs a catalog service from a device list.
func NewService(devices []catalog.Device) (*Service, error) {
	s := &Service{devices: make(map[string]catalog.Device, len(devices))}
	for _, device := range devices {
		if err := device.Validate(); err != nil {
			return nil, err
		}
		if _, exists := s.devices[device.Name]; exists {
			return nil, catalog.ErrDuplicateDevice
		}
		s.devices[device.Name] = device
		s.order = append(s.order, device.Name)
	}
	return s, nil
}

// Get returns the device with the given name.
func (s *Service) Get(name string) (catalog.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	device, ok := s.devices[name]
	if !ok {
		return catalog.Device{}, catalog.ErrDeviceNotFound
	}
	return device, nil
}

// List returns devices in configuration order.
func (s *Service) List() []catalog.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]catalog.Device, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.devices[name])
	}
	return result
}

// SetHourlyRate updates a device rate and returns the updated device.
func (s *Service) SetHourlyRate(name string, rate money.Money) (catalog.Device, error) {
	if rate < 0 {
		return catalog.Device{}, catalog.ErrNegativeRate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	device, ok := s.devices[name]
	if !ok {
		return catalog.Device{}, catalog.ErrDeviceNotFound
	}
	device.HourlyRate = rate
	s.devices[name] = device
	return device, nil
}
