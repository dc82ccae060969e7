package domain

import "time"

// DefaultRecipient receives reports when no recipient is configured.
const DefaultRecipient = "backup@aodn.org.au"

// Severity is the alerting grade of a report.
type Severity string

// Report severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Report is the structured message emitted once per rejected or failed file.
type Report struct {
	ID          string    `json:"id"`
	File        string    `json:"file"`
	Path        string    `json:"path"`
	Handler     string    `json:"handler"`
	State       State     `json:"state"`
	Stage       State     `json:"stage"`
	Kind        ErrorKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	Diagnostic  string    `json:"diagnostic,omitempty"`
	DiagLog     string    `json:"diagnostic_log,omitempty"`
	Quarantined string    `json:"quarantined,omitempty"`
	Recipient   string    `json:"recipient"`
	Time        time.Time `json:"time"`
}

// NewReport builds the report for a terminal, unsuccessful outcome.
func NewReport(o *Outcome, recipient string) Report {
	if recipient == "" {
		recipient = DefaultRecipient
	}
	r := Report{
		ID:        o.ID,
		Handler:   o.Handler,
		State:     o.State,
		Stage:     o.Stage,
		Path:      string(o.Path),
		Recipient: recipient,
		Time:      o.FinishedAt,
	}
	if o.File != nil {
		r.File = o.File.Path
	}
	if o.Err != nil {
		r.Kind = o.Err.Kind
		r.Severity = o.Err.Kind.Severity()
		r.Message = o.Err.Err.Error()
		r.Diagnostic = o.Err.Diagnostic
	}
	return r
}
