package memory

import (
	"sync"

	"github.com/oceandata/ingest/internal/adapters/driven/config"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds settings in memory. Tests use it to build Settings
// without a config.toml on disk.
type ConfigStore struct {
	mu     sync.RWMutex
	values config.Values
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(config.Values)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

func (s *ConfigStore) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Float(key)
}

func (s *ConfigStore) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Bool(key)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.StringSlice(key)
}

func (s *ConfigStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Keys(prefix)
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Load is a no-op: there is nothing to re-read.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns ":memory:".
func (s *ConfigStore) Path() string {
	return ":memory:"
}
