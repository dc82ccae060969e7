package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

var _ driven.Reporter = (*NATSReporter)(nil)

// Publisher is the subset of *nats.Conn used to send reports.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// NATSReporter publishes each report as JSON on a subject.
type NATSReporter struct {
	conn    Publisher
	subject string
}

// NewNATSReporter creates a reporter publishing on subject.
func NewNATSReporter(conn Publisher, subject string) (*NATSReporter, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: report subject is required", domain.ErrInvalidConfig)
	}
	return &NATSReporter{conn: conn, subject: subject}, nil
}

// Report publishes and flushes, so a returned nil means the server has it.
func (r *NATSReporter) Report(ctx context.Context, report domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	msg := nats.NewMsg(r.subject)
	msg.Data = data
	msg.Header.Set("Report-Id", report.ID)
	msg.Header.Set("Severity", string(report.Severity))
	msg.Header.Set("Recipient", report.Recipient)

	if err := r.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish report to %s: %w", r.subject, err)
	}
	if err := r.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush report to %s: %w", r.subject, err)
	}
	return nil
}
