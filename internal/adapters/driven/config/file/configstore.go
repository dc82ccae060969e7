package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/oceandata/ingest/internal/adapters/driven/config"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDirName is the config directory created under the user's home.
const DefaultDirName = ".ingest"

// FileName is the configuration file inside the config directory.
const FileName = "config.toml"

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	values   config.Values
}

// NewConfigStore opens <configDir>/config.toml, creating the directory if
// needed. If configDir is empty, defaults to ~/.ingest. A missing file is
// not an error: every setting then takes its default.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		configDir = filepath.Join(home, DefaultDirName)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, FileName),
		values:   make(config.Values),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
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

// Set stores a value and rewrites the file. On a write failure the
// previous value is restored so memory and disk stay in step.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// save writes the nested tables back to disk (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.values.Nest())
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.filePath, err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file. A malformed file is
// domain.ErrInvalidConfig.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.values = make(config.Values)
		return nil
	}
	if err != nil {
		return err
	}

	var tables map[string]any
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, s.filePath, err)
	}
	s.values = config.Flatten(tables)
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
