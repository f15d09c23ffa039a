package device

import (
	"context"
	"sync"

	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	devices map[domain.DeviceID]*Device
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{devices: make(map[domain.DeviceID]*Device)}
}

func (s *InMemoryStore) Save(_ context.Context, device *Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *device
	s.devices[device.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.DeviceID) (*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	device, ok := s.devices[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "device not found")
	}
	clone := *device
	return &clone, nil
}
