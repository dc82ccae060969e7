package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/core/ports/driving"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService exposes the index catalogue to the CLI.
type IndexService struct {
	catalogue driven.IndexCatalogue
}

// NewIndexService creates an index service.
func NewIndexService(catalogue driven.IndexCatalogue) *IndexService {
	return &IndexService{catalogue: catalogue}
}

// Get returns the entry at a hierarchy path.
func (s *IndexService) Get(ctx context.Context, path string) (*domain.IndexEntry, error) {
	hp, err := domain.ParseHierarchyPath(strings.Trim(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInput, path)
	}
	return s.catalogue.Get(ctx, hp)
}

// List returns entries under a path prefix. An empty prefix lists everything.
func (s *IndexService) List(ctx context.Context, prefix string) ([]domain.IndexEntry, error) {
	return s.catalogue.List(ctx, strings.TrimPrefix(prefix, "/"))
}
