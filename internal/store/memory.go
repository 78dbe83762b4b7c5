package store

import (
	"context"
	"sync"

	"github.com/j00les/workout-map/internal/workout"
)

// Memory keeps encoded collections in process memory. Values go through the
// same encoding as the remote backends, so callers never share slices.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Save(_ context.Context, key string, records []workout.Snapshot) error {
	raw, err := encode(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *Memory) Load(_ context.Context, key string) ([]workout.Snapshot, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decode(raw)
}

func (m *Memory) Close() error { return nil }
