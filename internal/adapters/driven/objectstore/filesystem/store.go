// Package filesystem stores objects in a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oceandata/ingest/internal/adapters/driven/localfs"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ObjectStore = (*Store)(nil)

// Store is a write-once object store rooted at a directory.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: object store directory is required", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create object store directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Exists reports whether an object is stored at key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	path, err := localfs.Join(s.root, key)
	if err != nil {
		return false, err
	}
	return localfs.Exists(path)
}

// Put stores srcPath under key. The object becomes visible in one step.
func (s *Store) Put(ctx context.Context, key, srcPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := localfs.Join(s.root, key)
	if err != nil {
		return err
	}
	if err := localfs.CreateNew(srcPath, path); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Location returns the physical path of key.
func (s *Store) Location(key string) string {
	if path, err := localfs.Join(s.root, key); err == nil {
		return path
	}
	return s.root + "/" + key
}
