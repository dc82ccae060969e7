package driven

import (
	"context"

	"github.com/oceandata/ingest/internal/core/domain"
)

// ObjectStore is the durable, content-addressed storage tier.
// Keys are the root namespace joined with the hierarchy path.
type ObjectStore interface {
	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores the file at srcPath under key.
	// Returns domain.ErrAlreadyExists if an object is already there.
	Put(ctx context.Context, key, srcPath string) error

	// Location returns a human-readable location for key.
	Location(key string) string
}

// Mirror is the regenerable serving filesystem.
type Mirror interface {
	// Write copies srcPath to the mirror at path. When overwrite is false
	// and a file exists there, nothing is written and written is false.
	Write(ctx context.Context, path domain.HierarchyPath, srcPath string, overwrite bool) (written bool, err error)

	// Location returns the physical location of path.
	Location(path domain.HierarchyPath) string
}

// Indexer submits content for search/discovery indexing.
type Indexer interface {
	// Index upserts the entry; re-indexing the same path replaces it.
	Index(ctx context.Context, entry domain.IndexEntry) error
}

// IndexCatalogue is the read side of the index.
type IndexCatalogue interface {
	// Get returns the entry at path, or domain.ErrNotFound.
	Get(ctx context.Context, path domain.HierarchyPath) (*domain.IndexEntry, error)

	// List returns entries whose path starts with prefix, ordered by path.
	List(ctx context.Context, prefix string) ([]domain.IndexEntry, error)
}

// ContentInspector reads indexable metadata from validated content.
type ContentInspector interface {
	// Inspect returns the detected format and header attributes of the file.
	Inspect(ctx context.Context, path string) (format string, attrs map[string]string, err error)
}
