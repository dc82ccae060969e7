package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/delegate"
)

// Exit statuses understood from a checker executable.
const (
	ExitPass  = 0
	ExitFault = 2
)

// Ensure ExecCheck implements the interface.
var _ driven.Check = (*ExecCheck)(nil)

// ExecCheck runs an external checker executable against a file.
//
// The checker is invoked as:
//
//	command [args...] [--version V] [--facility F] FILE
//
// Exit status 0 is a pass, 2 means the checker itself failed, and any other
// status is a compliance failure. Combined output is the diagnostic.
type ExecCheck struct {
	def domain.CheckDefinition
	env []string
}

// NewExecCheck creates an exec-backed check running with env.
func NewExecCheck(def domain.CheckDefinition, env []string) (*ExecCheck, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: check has no name", domain.ErrInvalidConfig)
	}
	if def.Command == "" {
		return nil, fmt.Errorf("%w: check %s has no command", domain.ErrInvalidConfig, def.Name)
	}
	return &ExecCheck{def: def, env: env}, nil
}

// Name returns the registry key.
func (c *ExecCheck) Name() string {
	return c.def.Name
}

// Run invokes the checker.
func (c *ExecCheck) Run(ctx context.Context, path, version string) domain.CheckResult {
	args := append([]string{}, c.def.Args...)
	if version != "" {
		args = append(args, "--version", version)
	}
	if c.def.Facility != "" {
		args = append(args, "--facility", c.def.Facility)
	}
	args = append(args, path)

	result := domain.CheckResult{Name: c.def.Name}

	res, err := delegate.Run(ctx, delegate.Command{
		Path: c.def.Command,
		Args: args,
		Env:  c.env,
	})
	if err != nil {
		result.Status = domain.CheckFaulted
		result.Diagnostic = err.Error()
		return result
	}

	result.Diagnostic = strings.TrimRight(string(res.Output), "\n")
	switch res.ExitCode {
	case ExitPass:
		result.Status = domain.CheckPassed
	case ExitFault:
		result.Status = domain.CheckFaulted
	default:
		result.Status = domain.CheckFailed
	}
	return result
}
