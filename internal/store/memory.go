package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryRepository keeps documents in process memory. State is lost on exit.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string][]byte)}
}

func (r *MemoryRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (r *MemoryRepository) Save(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[key] = slices.Clone(data)
	return nil
}

// Keys returns the stored keys in sorted order.
func (r *MemoryRepository) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.docs))
}
