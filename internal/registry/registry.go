// Package registry is the directory of controllable GB/T 28181 devices
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"gb-ptz-remote/internal/gb28181"
)

var (
	// ErrNotFound means the device is not in the registry
	ErrNotFound = errors.New("device not in registry")
	// ErrAlreadyExists means a device with that id is already registered
	ErrAlreadyExists = errors.New("device already in registry")
	// ErrInvalidDevice means the device has no id or a bad PTZ address
	ErrInvalidDevice = errors.New("invalid device")
)

// Device is a GB/T 28181 device and the channels that accept PTZ commands
type Device struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Address  uint16   `yaml:"address" json:"address"` // 12-bit PTZ address, 0 = default
	RTSP     string   `yaml:"rtsp" json:"rtsp,omitempty"`
	Channels []string `yaml:"channels" json:"channels"`
}

// HasChannel reports whether ch belongs to the device. A device without
// configured channels accepts any channel id.
func (d Device) HasChannel(ch string) bool {
	return len(d.Channels) == 0 || slices.Contains(d.Channels, ch)
}

// PTZAddress is the address carried in the PTZCmd frame
func (d Device) PTZAddress() uint16 {
	if d.Address == 0 {
		return gb28181.DefaultAddress
	}
	return d.Address
}

func (d Device) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDevice)
	}
	if d.Address > gb28181.MaxAddress {
		return fmt.Errorf("%w: %s address %d above %d", ErrInvalidDevice, d.ID, d.Address, gb28181.MaxAddress)
	}
	return nil
}

// Store looks devices up by id
type Store interface {
	Get(id string) (Device, error)
	List() ([]Device, error)
	Add(d Device) error
}

// Memory is a Store held in process memory
type Memory struct {
	mu      sync.RWMutex
	devices map[string]Device
}

// NewMemory returns a Memory store holding devices. Duplicate ids keep the
// first entry and are reported in the returned error.
func NewMemory(devices []Device) (*Memory, error) {
	m := &Memory{devices: make(map[string]Device, len(devices))}
	var errs []error
	for _, d := range devices {
		if err := m.Add(d); err != nil {
			errs = append(errs, err)
		}
	}
	return m, errors.Join(errs...)
}

func (m *Memory) Get(id string) (Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[id]
	if !ok {
		return Device{}, ErrNotFound
	}
	return d, nil
}

// List returns the devices ordered by id
func (m *Memory) List() ([]Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	devices := make([]Device, 0, len(m.devices))
	for _, d := range m.devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

func (m *Memory) Add(d Device) error {
	if err := d.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, d.ID)
	}
	m.devices[d.ID] = d
	return nil
}
