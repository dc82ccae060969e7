package report

import (
	"context"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/logger"
)

var _ driven.Reporter = LogReporter{}

// LogReporter writes a one-line summary of each report to the logger.
type LogReporter struct{}

// Report logs the report at a level matching its severity.
func (LogReporter) Report(_ context.Context, r domain.Report) error {
	log := logger.For(r.ID)
	switch r.Severity {
	case domain.SeverityInfo:
		log.Info("Report to %s: %s %s at %s: %s", r.Recipient, r.File, r.State, r.Stage, r.Message)
	case domain.SeverityWarning:
		log.Warn("Report to %s: %s %s at %s: %s", r.Recipient, r.File, r.State, r.Stage, r.Message)
	default:
		log.Error("Report to %s: %s %s at %s: %s", r.Recipient, r.File, r.State, r.Stage, r.Message)
	}
	return nil
}
