package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	catalog "venue-pos/internal/catalog/domain"
)

// ErrNoDevices is returned when a catalog file contains no devices.
var ErrNoDevices = errors.New("catalog config: no devices defined")

type catalogFile struct {
	Devices []catalog.Device `yaml:"devices"`
}

// LoadDevices reads the device list from a YAML file. An empty path
// falls back to the built-in venue defaults.
func LoadDevices(path string) ([]catalog.Device, error) {
	if path == "" {
		return catalog.DefaultDevices(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Devices) == 0 {
		return nil, ErrNoDevices
	}
	for _, device := range file.Devices {
		if err := device.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Devices, nil
}
