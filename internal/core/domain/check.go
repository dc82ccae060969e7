package domain

import "strings"

// StructuralCheckName names the mandatory structural probe in outcomes and logs.
const StructuralCheckName = "structure"

// CheckStatus is the result of a single check.
type CheckStatus string

// Check statuses.
const (
	// CheckPassed means the file complies.
	CheckPassed CheckStatus = "pass"

	// CheckFailed means the check reported a rule violation.
	CheckFailed CheckStatus = "fail"

	// CheckFaulted means the checker itself raised an exception.
	// It is distinct from an ordinary failure for alerting.
	CheckFaulted CheckStatus = "fault"
)

// CheckResult is the outcome of one check against one file.
type CheckResult struct {
	// Name is the check name, including any version suffix.
	Name string

	// Status is pass, fail or fault.
	Status CheckStatus

	// Diagnostic is free-form, possibly multi-line, checker output.
	Diagnostic string

	// LogPath is where the diagnostic was persisted, if it was.
	LogPath string
}

// Passed reports whether the check passed.
func (r CheckResult) Passed() bool {
	return r.Status == CheckPassed
}

// CheckOutcome collects the structural probe plus the requested named checks,
// in the order they ran. Checks after the first failure never run.
type CheckOutcome struct {
	Results []CheckResult
}

// Passed is true only if at least the structural probe ran and every recorded result passed.
func (o CheckOutcome) Passed() bool {
	if len(o.Results) == 0 {
		return false
	}
	for _, r := range o.Results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// FirstFailure returns the failing result, or nil if all passed.
func (o CheckOutcome) FirstFailure() *CheckResult {
	for i := range o.Results {
		if !o.Results[i].Passed() {
			return &o.Results[i]
		}
	}
	return nil
}

// CheckRequest is a parsed named-check reference such as "imos:1.4".
type CheckRequest struct {
	// Name is the registry key.
	Name string

	// Version is an optional rule-set version passed to the checker.
	Version string
}

// ParseCheckRequest splits "name:version" into its parts.
func ParseCheckRequest(s string) CheckRequest {
	name, version, _ := strings.Cut(strings.TrimSpace(s), ":")
	return CheckRequest{Name: name, Version: version}
}

// String returns the canonical "name[:version]" form.
func (r CheckRequest) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + ":" + r.Version
}

// ParseCheckList splits a space and/or comma separated list of check names.
// An empty list means the structural probe only.
func ParseCheckList(s string) []CheckRequest {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	reqs := make([]CheckRequest, 0, len(fields))
	for _, f := range fields {
		reqs = append(reqs, ParseCheckRequest(f))
	}
	return reqs
}
