// Package evaluator runs the external path-evaluation executable that
// tells the generic handler where a file belongs.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/delegate"
	"github.com/oceandata/ingest/internal/logger"
)

// Ensure Exec implements the interface.
var _ driven.PathEvaluator = (*Exec)(nil)

// Exec evaluates paths by running an executable with the file path as its
// only argument and reading one line from its output.
type Exec struct {
	command string
	env     []string
}

// NewExec creates an evaluator for command, run with env.
func NewExec(command string, env []string) (*Exec, error) {
	if command == "" {
		return nil, fmt.Errorf("%w: path evaluation executable is required", domain.ErrInvalidInput)
	}
	return &Exec{command: command, env: env}, nil
}

// Evaluate runs the evaluator. A non-zero exit, empty output or more than
// one line of output is a resolution failure.
func (e *Exec) Evaluate(ctx context.Context, path string) (string, error) {
	res, err := delegate.Run(ctx, delegate.Command{
		Path: e.command,
		Args: []string{path},
		Env:  e.env,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolution, err)
	}

	out := strings.TrimSpace(string(res.Output))
	if res.ExitCode != 0 {
		logger.Debug("Path evaluator output: %s", out)
		return "", fmt.Errorf("%w: %s exited with status %d", domain.ErrResolution, e.command, res.ExitCode)
	}
	if out == "" {
		return "", fmt.Errorf("%w: %s printed no path", domain.ErrResolution, e.command)
	}
	if strings.ContainsAny(out, "\r\n") {
		return "", fmt.Errorf("%w: %s printed more than one line", domain.ErrResolution, e.command)
	}
	return out, nil
}
