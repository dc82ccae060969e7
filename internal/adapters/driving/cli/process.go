package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceandata/ingest/internal/app"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/delegate"
	"github.com/oceandata/ingest/internal/logger"
)

// handlerFlags are shared by the commands that build a pipeline.
type handlerFlags struct {
	regex     string
	pathEval  string
	checks    string
	env       []string
	recipient string
}

func (f *handlerFlags) spec(family string) app.HandlerSpec {
	return app.HandlerSpec{
		Family:    family,
		Filter:    f.regex,
		PathEval:  f.pathEval,
		Checks:    f.checks,
		Recipient: f.recipient,
	}
}

func (f *handlerFlags) registerGeneric(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.regex, "regex", "", "only accept file names matching this expression")
	cmd.Flags().StringVar(&f.pathEval, "path-eval", "", "executable printing the hierarchy path of a file")
}

func (f *handlerFlags) registerCommon(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.checks, "checks", "", `named compliance checks, e.g. "cf imos:1.4"`)
	cmd.Flags().StringArrayVar(&f.env, "env", nil, "NAME=VALUE set for external checkers and evaluators (repeatable)")
	cmd.Flags().StringVar(&f.recipient, "backup-recipient", "", "report recipient (default report.recipient)")
}

// openRuntime loads settings and assembles the adapters. The returned
// close func writes metrics and releases resources.
func openRuntime(ctx context.Context, overrides []string) (Runtime, func(), error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	env, err := delegate.MergeEnv(os.Environ(), overrides)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	rt, err := newRuntime(ctx, settings, env)
	if err != nil {
		return nil, nil, err
	}
	return rt, func() {
		if err := rt.Close(); err != nil {
			logger.Error("Closing: %v", err)
		}
	}, nil
}

// processOne runs a single file through the pipeline described by spec.
func processOne(cmd *cobra.Command, spec app.HandlerSpec, overrides []string, path string) error {
	ctx := cmd.Context()

	rt, closeRuntime, err := openRuntime(ctx, overrides)
	if err != nil {
		return err
	}
	defer closeRuntime()

	pipeline, err := rt.Pipeline(spec)
	if err != nil {
		return err
	}

	outcome := pipeline.Process(ctx, path)
	printOutcome(cmd, outcome)
	if !outcome.Succeeded() {
		return fmt.Errorf("%w: %s", ErrUnsuccessful, outcome.State)
	}
	return nil
}

// printOutcome writes a one-line summary of a terminal outcome.
func printOutcome(cmd *cobra.Command, o *domain.Outcome) {
	name := ""
	if o.File != nil {
		name = o.File.Name
	}
	if o.Succeeded() {
		cmd.Printf("%s: published to %s\n", name, o.Path)
		return
	}
	cmd.Printf("%s: %s at %s (%s)\n", name, o.State, o.Stage, o.Err.Kind)
}
