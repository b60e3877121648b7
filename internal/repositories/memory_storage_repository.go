package repositories

import (
	"context"
	"sync"
)

// memoryStorageRepository keeps local storage in process memory.
// Nothing survives a restart.
type memoryStorageRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorageRepository creates a new in-memory local storage repository
func NewMemoryStorageRepository() *memoryStorageRepository {
	return &memoryStorageRepository{
		values: make(map[string]string),
	}
}

// Get retrieves the value stored under key
func (r *memoryStorageRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key
func (r *memoryStorageRepository) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

// Remove deletes key
func (r *memoryStorageRepository) Remove(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}
