package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Repository. It backs tests and ephemeral runs
// where durability across restarts is not wanted.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte

	// FailSaves forces every Save to return an error. Tests use it to
	// exercise the degraded-persistence path.
	FailSaves error
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.docs[key] = cp
	return nil
}
