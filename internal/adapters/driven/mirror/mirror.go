// Package mirror writes published files to the serving filesystem.
package mirror

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
var _ driven.Mirror = (*Mirror)(nil)

// Mirror is a directory tree laid out by hierarchy path.
type Mirror struct {
	root string
}

// New creates a mirror rooted at dir, creating it if needed.
func New(dir string) (*Mirror, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: mirror directory is required", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create mirror directory: %w", err)
	}
	return &Mirror{root: dir}, nil
}

// Write copies srcPath to path. An existing file is replaced atomically when
// overwrite is set and left untouched otherwise.
func (m *Mirror) Write(ctx context.Context, path domain.HierarchyPath, srcPath string, overwrite bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	dst, err := localfs.Join(m.root, path.String())
	if err != nil {
		return false, err
	}

	if overwrite {
		if err := localfs.Replace(srcPath, dst); err != nil {
			return false, fmt.Errorf("mirror %s: %w", path, err)
		}
		return true, nil
	}

	err = localfs.CreateNew(srcPath, dst)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return false, nil
	default:
		return false, fmt.Errorf("mirror %s: %w", path, err)
	}
}

// Location returns the physical path of path.
func (m *Mirror) Location(path domain.HierarchyPath) string {
	if dst, err := localfs.Join(m.root, path.String()); err == nil {
		return dst
	}
	return m.root + "/" + path.String()
}
