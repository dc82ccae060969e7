package driven

import (
	"context"

	"github.com/oceandata/ingest/internal/core/domain"
)

// FormatProbe is the mandatory structural check: a lightweight probe that
// confirms the file is readable in its expected binary container format.
type FormatProbe interface {
	// Probe returns nil if the header is readable, or an error wrapping
	// domain.ErrInvalidFormat describing why not.
	Probe(ctx context.Context, path string) error
}

// Check is one named compliance check.
type Check interface {
	// Name returns the registry key.
	Name() string

	// Run checks the file at path. The version may be empty.
	// Run never returns an error: checker failures are CheckFaulted results.
	Run(ctx context.Context, path, version string) domain.CheckResult
}

// CheckRegistry resolves check names to implementations.
type CheckRegistry interface {
	// Get returns the check registered under name.
	// Returns domain.ErrUnknownCheck if none is.
	Get(name string) (Check, error)

	// Names returns all registered check names.
	Names() []string
}

// DiagnosticLog persists check diagnostics in a log scoped to one file
// identity, so concurrent invocations never interleave their output.
type DiagnosticLog interface {
	// Append writes a diagnostic entry for the file and returns the log location.
	Append(fileName, check, text string) (string, error)
}
