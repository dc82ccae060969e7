package driven

import (
	"context"
	"time"

	"github.com/oceandata/ingest/internal/core/domain"
)

// Reporter emits the structured report of a rejected or failed file.
type Reporter interface {
	Report(ctx context.Context, report domain.Report) error
}

// Quarantine keeps a copy of a failed file for investigation.
type Quarantine interface {
	// Keep copies the file and returns the location of the copy.
	Keep(ctx context.Context, file *domain.IncomingFile, id string) (string, error)
}

// Metrics records pipeline activity.
type Metrics interface {
	// ObserveOutcome counts a terminal outcome.
	ObserveOutcome(handler string, state, stage domain.State)

	// ObserveStage records how long a stage took.
	ObserveStage(handler string, stage domain.State, d time.Duration)

	// ObservePublished counts published bytes per destination.
	ObservePublished(handler string, dest domain.Destination, bytes int64)
}
