package memory

import (
	"context"
	"sync"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Ensure Reporter implements the interface.
var _ driven.Reporter = (*Reporter)(nil)

// Reporter collects reports in memory.
type Reporter struct {
	mu      sync.Mutex
	reports []domain.Report
}

// NewReporter creates a new collecting reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report records the report.
func (r *Reporter) Report(_ context.Context, report domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

// Reports returns a copy of the collected reports.
func (r *Reporter) Reports() []domain.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Report, len(r.reports))
	copy(out, r.reports)
	return out
}
