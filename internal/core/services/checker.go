package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/logger"
)

// ComplianceRunner runs the mandatory structural probe followed by the
// requested named checks, stopping at the first failure.
type ComplianceRunner struct {
	probe    driven.FormatProbe
	registry driven.CheckRegistry
	diag     driven.DiagnosticLog
}

// NewComplianceRunner creates a runner. diag may be nil, in which case
// diagnostics are only carried in the outcome.
func NewComplianceRunner(
	probe driven.FormatProbe,
	registry driven.CheckRegistry,
	diag driven.DiagnosticLog,
) *ComplianceRunner {
	return &ComplianceRunner{
		probe:    probe,
		registry: registry,
		diag:     diag,
	}
}

// Validate confirms every requested check is registered.
func (r *ComplianceRunner) Validate(reqs []domain.CheckRequest) error {
	var errs []error
	for _, req := range reqs {
		if _, err := r.registry.Get(req.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run checks the file's content path. The returned outcome holds every result
// recorded so far; the error is non-nil when the overall outcome is not a pass
// and wraps ErrInvalidFormat, ErrComplianceViolation or ErrCheckerFault.
func (r *ComplianceRunner) Run(
	ctx context.Context,
	file *domain.IncomingFile,
	reqs []domain.CheckRequest,
) (domain.CheckOutcome, error) {
	var outcome domain.CheckOutcome
	target := file.ContentPath()

	// 1. STRUCTURAL PROBE (a failure here means no named check runs)
	if err := r.probe.Probe(ctx, target); err != nil {
		if !errors.Is(err, domain.ErrInvalidFormat) {
			err = fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
		}
		return r.StructuralFailure(file, err), err
	}
	outcome.Results = append(outcome.Results, domain.CheckResult{
		Name:   domain.StructuralCheckName,
		Status: domain.CheckPassed,
	})

	// 2. NAMED CHECKS, in order
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		check, err := r.registry.Get(req.Name)
		if err != nil {
			return outcome, err
		}

		logger.Debug("Running check %s on %s", req, file.Name)
		result := check.Run(ctx, target, req.Version)
		result.Name = req.String()

		if result.Passed() {
			outcome.Results = append(outcome.Results, result)
			continue
		}

		result = r.persist(file, result)
		outcome.Results = append(outcome.Results, result)

		if result.Status == domain.CheckFaulted {
			logger.Warn("Checker %s raised an exception on %s", result.Name, file.Name)
			return outcome, fmt.Errorf("%s: %w: %w", result.Name, domain.ErrComplianceViolation, domain.ErrCheckerFault)
		}
		return outcome, fmt.Errorf("%s: %w", result.Name, domain.ErrComplianceViolation)
	}

	return outcome, nil
}

// StructuralFailure records a failed structural probe for a file that could
// not be read in its expected format, e.g. a daily product that does not
// decompress. The diagnostic goes to the file-scoped log like any other.
func (r *ComplianceRunner) StructuralFailure(file *domain.IncomingFile, err error) domain.CheckOutcome {
	result := domain.CheckResult{
		Name:       domain.StructuralCheckName,
		Status:     domain.CheckFailed,
		Diagnostic: err.Error(),
	}
	return domain.CheckOutcome{Results: []domain.CheckResult{r.persist(file, result)}}
}

// persist writes a failing result's diagnostic to the file-scoped log.
// A log write failure is itself logged but does not change the outcome.
func (r *ComplianceRunner) persist(file *domain.IncomingFile, result domain.CheckResult) domain.CheckResult {
	if r.diag == nil || result.Diagnostic == "" {
		return result
	}
	loc, err := r.diag.Append(file.Name, result.Name, result.Diagnostic)
	if err != nil {
		logger.Error("Writing diagnostics for %s: %v", file.Name, err)
		return result
	}
	result.LogPath = loc
	return result
}
