// Package memory provides a process-local ports.KVStore. It backs the session
// store and the memory store driver.
package memory

import (
	"context"
	"slices"
	"sync"
)

// KV is a mutex-guarded map. Values are copied on the way in and out so
// callers cannot mutate stored bytes.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty store.
func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

// Read returns a copy of the value stored at key.
func (s *KV) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}

	return slices.Clone(value), true, nil
}

// Write stores a copy of value at key.
func (s *KV) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = slices.Clone(value)

	return nil
}

// Name implements ports.HealthChecker.
func (s *KV) Name() string {
	return "store"
}

// Check implements ports.HealthChecker. A map is always reachable.
func (s *KV) Check(context.Context) error {
	return nil
}
