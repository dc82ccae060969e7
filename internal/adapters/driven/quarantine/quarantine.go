// Package quarantine keeps copies of rejected and failed files.
package quarantine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oceandata/ingest/internal/adapters/driven/localfs"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Quarantine = (*Dir)(nil)

// Dir copies files into an error directory as <id>-<name>.
type Dir struct {
	root string
}

// New creates the error directory if needed.
func New(dir string) (*Dir, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: error directory is required", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create error directory: %w", err)
	}
	return &Dir{root: dir}, nil
}

// Keep copies the original file, never the working copy.
func (d *Dir) Keep(ctx context.Context, file *domain.IncomingFile, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: empty invocation id", domain.ErrInvalidInput)
	}
	dst := filepath.Join(d.root, id+"-"+file.Name)
	if err := localfs.CreateNew(file.Path, dst); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", file.Name, err)
	}
	return dst, nil
}
