// Package flags provides a ports.FeatureFlags implementation backed by the
// features section of the service configuration.
package flags

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Static serves flags from configuration. Values may be native YAML types or
// strings from environment overrides ("true", "8"); koanf coerces them.
// Set replaces a flag at runtime, which the operator API uses.
type Static struct {
	mu sync.RWMutex
	k  *koanf.Koanf
}

// NewStatic loads the given flag values. Flag names must not contain dots.
func NewStatic(values map[string]any) (*Static, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(maps.Clone(values), ""), nil); err != nil {
		return nil, fmt.Errorf("loading feature flags: %w", err)
	}

	return &Static{k: k}, nil
}

// IsEnabled returns the flag as a bool, or defaultValue when unset.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.k.Exists(flag) {
		return defaultValue
	}

	return s.k.Bool(flag)
}

// GetString returns the flag as a string, or defaultValue when unset.
func (s *Static) GetString(_ context.Context, flag, defaultValue string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.k.Exists(flag) {
		return defaultValue
	}

	return s.k.String(flag)
}

// GetInt returns the flag as an int, or defaultValue when unset.
func (s *Static) GetInt(_ context.Context, flag string, defaultValue int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.k.Exists(flag) {
		return defaultValue
	}

	return s.k.Int(flag)
}

// Set overrides a flag value.
func (s *Static) Set(flag string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.k.Set(flag, value)
}

// All returns a snapshot of every flag.
func (s *Static) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.k.All()
}
