package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure Index implements the interfaces.
var (
	_ driven.Indexer        = (*Index)(nil)
	_ driven.IndexCatalogue = (*Index)(nil)
)

// Index is an in-memory index catalogue.
type Index struct {
	mu      sync.RWMutex
	entries map[domain.HierarchyPath]domain.IndexEntry
}

// NewIndex creates a new in-memory index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[domain.HierarchyPath]domain.IndexEntry),
	}
}

// Index upserts an entry by path.
func (x *Index) Index(_ context.Context, entry domain.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[entry.Path] = entry
	return nil
}

// Get returns the entry at path.
func (x *Index) Get(_ context.Context, path domain.HierarchyPath) (*domain.IndexEntry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entry, ok := x.entries[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// List returns entries whose path starts with prefix, ordered by path.
func (x *Index) List(_ context.Context, prefix string) ([]domain.IndexEntry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	result := make([]domain.IndexEntry, 0, len(x.entries))
	for p, entry := range x.entries {
		if strings.HasPrefix(string(p), prefix) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result, nil
}
