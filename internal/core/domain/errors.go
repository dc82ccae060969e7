package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates the settings cannot drive a pipeline.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Data Errors.

	// ErrNoPatternMatched indicates the file name matched none of the handler's patterns.
	ErrNoPatternMatched = errors.New("no pattern matched")

	// ErrInvalidFormat indicates the file failed the mandatory structural probe.
	ErrInvalidFormat = errors.New("not a valid file of expected format")

	// Compliance Errors.

	// ErrComplianceViolation indicates a named check reported a rule violation.
	ErrComplianceViolation = errors.New("compliance check failed")

	// ErrCheckerFault indicates the checker itself raised an exception.
	// The validity of the file is unknown.
	ErrCheckerFault = errors.New("compliance checker raised an exception")

	// ErrUnknownCheck indicates a requested check name has no registered implementation.
	ErrUnknownCheck = errors.New("unknown compliance check")

	// Operational Errors.

	// ErrResolution indicates the hierarchy path could not be computed.
	ErrResolution = errors.New("hierarchy resolution failed")

	// ErrPublish indicates a publish destination could not be updated.
	ErrPublish = errors.New("publish failed")

	// ErrIndex indicates the content could not be submitted for indexing.
	ErrIndex = errors.New("indexing failed")
)

// ErrorKind classifies a terminal pipeline failure for reporting and alerting.
type ErrorKind string

// Error kinds.
const (
	// KindData is bad or unrecognised input. Not a system fault.
	KindData ErrorKind = "data"

	// KindCompliance is a named check reporting a rule violation.
	KindCompliance ErrorKind = "compliance"

	// KindCheckerFault is a named check whose own execution failed.
	KindCheckerFault ErrorKind = "checker_fault"

	// KindResolution is a hierarchy path that could not be computed.
	KindResolution ErrorKind = "resolution"

	// KindPublish is a failed destination write.
	KindPublish ErrorKind = "publish"

	// KindSystem covers configuration and infrastructure failures.
	KindSystem ErrorKind = "system"
)

// Severity returns the report severity for this kind.
func (k ErrorKind) Severity() Severity {
	switch k {
	case KindData:
		return SeverityInfo
	case KindCheckerFault:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// ClassifyError maps a stage error onto its kind using the sentinel chain.
func ClassifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNoPatternMatched), errors.Is(err, ErrInvalidFormat):
		return KindData
	case errors.Is(err, ErrCheckerFault):
		return KindCheckerFault
	case errors.Is(err, ErrComplianceViolation):
		return KindCompliance
	case errors.Is(err, ErrResolution):
		return KindResolution
	case errors.Is(err, ErrPublish), errors.Is(err, ErrIndex):
		return KindPublish
	default:
		return KindSystem
	}
}

// StageError attaches file identity and stage context to a terminal failure.
type StageError struct {
	// Stage is the state the pipeline was attempting to enter.
	Stage State

	// File is the base name of the file being processed.
	File string

	// Kind is the error classification.
	Kind ErrorKind

	// Diagnostic is optional multi-line detail, e.g. a checker report.
	Diagnostic string

	// Err is the underlying cause.
	Err error
}

// NewStageError wraps err with stage context, classifying it from the sentinel chain.
func NewStageError(stage State, file string, err error) *StageError {
	return &StageError{
		Stage: stage,
		File:  file,
		Kind:  ClassifyError(err),
		Err:   err,
	}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.File, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}
