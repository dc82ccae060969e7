package report

import (
	"context"
	"errors"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

var _ driven.Reporter = Fanout(nil)

// Fanout sends a report to every reporter, even when an earlier one fails.
type Fanout []driven.Reporter

// Report returns the joined failures.
func (f Fanout) Report(ctx context.Context, report domain.Report) error {
	var errs []error
	for _, r := range f {
		if err := r.Report(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
