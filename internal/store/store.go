// Package store provides the persistent key-value collaborator the price
// core uses for cross-invocation state (price snapshots, host-written
// portfolio holdings). The host decides the backing: in-memory, redis, or
// postgres.
package store

import (
	"context"
	"sync"
)

// Store is a byte-oriented key-value store. Get returns (nil, nil) for a
// missing key; callers treat nil bytes as "no prior state". Implementations
// make no exclusivity guarantee across processes; concurrent writers to the
// same key are a documented lost-update race.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryStore is a mutex-guarded in-process Store, used by tests and hosts
// that do not persist across launches.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}
