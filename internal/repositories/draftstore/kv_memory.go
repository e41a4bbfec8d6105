package draftstore

import (
	"context"
	"sync"

	apperrors "github.com/stagecraft/draftpipe/internal/errors"
)

// MemoryKV is an in-memory implementation of KV, used in tests and as the
// fallback when Redis is unavailable.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates a new in-memory KV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: make(map[string]string),
	}
}

// Get returns the stored value for key
func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", apperrors.NotFoundf("no value for key %q", key)
	}
	return value, nil
}

// Set stores the value under key
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Del removes the key; absent keys are fine
func (m *MemoryKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
