package driving

import (
	"context"

	"github.com/oceandata/ingest/internal/core/domain"
)

// Pipeline processes a single incoming file from Received to a terminal state.
type Pipeline interface {
	// Process runs the file through classification, hierarchy resolution,
	// checks and publish. It always returns a terminal outcome; failures
	// are carried in Outcome.Err rather than returned.
	Process(ctx context.Context, path string) *domain.Outcome

	// Handler returns the handler family name.
	Handler() string
}

// IndexService is the read side used by the CLI.
type IndexService interface {
	// Get returns the index entry at a hierarchy path.
	Get(ctx context.Context, path string) (*domain.IndexEntry, error)

	// List returns entries under a path prefix.
	List(ctx context.Context, prefix string) ([]domain.IndexEntry, error)
}
