package memory

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	puts    int
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string][]byte),
	}
}

// Exists reports whether key is stored.
func (s *ObjectStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Put reads srcPath into memory under key. Existing objects are never replaced.
func (s *ObjectStore) Put(_ context.Context, key, srcPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return domain.ErrAlreadyExists
	}
	s.objects[key] = data
	s.puts++
	return nil
}

// Location returns a memory URL for key.
func (s *ObjectStore) Location(key string) string {
	return "memory://" + key
}

// Object returns the stored bytes for key.
func (s *ObjectStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// Keys returns all stored keys in order.
func (s *ObjectStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts returns how many objects were written.
func (s *ObjectStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
