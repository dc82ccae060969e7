package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/core/ports/driving"
	"github.com/oceandata/ingest/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// PipelineConfig holds the per-handler settings of a pipeline.
type PipelineConfig struct {
	// Options are the publish options before handler adjustment.
	Options domain.PublishOptions

	// Recipient is addressed in every report.
	Recipient string
}

// Pipeline sequences classification, hierarchy resolution, checks and
// publish for a single file. Any stage failure short-circuits to a terminal
// state; nothing is retried within one invocation.
type Pipeline struct {
	handler    driven.Handler
	runner     *ComplianceRunner
	publisher  *Publisher
	reporter   driven.Reporter
	quarantine driven.Quarantine
	metrics    driven.Metrics
	config     PipelineConfig

	newID func() string
	now   func() time.Time
}

// NewPipeline creates a pipeline. quarantine and metrics may be nil.
func NewPipeline(
	handler driven.Handler,
	runner *ComplianceRunner,
	publisher *Publisher,
	reporter driven.Reporter,
	quarantine driven.Quarantine,
	metrics driven.Metrics,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		handler:    handler,
		runner:     runner,
		publisher:  publisher,
		reporter:   reporter,
		quarantine: quarantine,
		metrics:    metrics,
		config:     config,
		newID:      func() string { return uuid.New().String() },
		now:        time.Now,
	}
}

// Handler returns the handler family name.
func (p *Pipeline) Handler() string {
	return p.handler.Name()
}

// invocation tracks one pass through the state machine.
type invocation struct {
	outcome *domain.Outcome
	log     logger.Scoped
	started time.Time
}

// Process runs one file to a terminal state and emits a report unless it
// reached Done.
func (p *Pipeline) Process(ctx context.Context, path string) *domain.Outcome {
	inv := &invocation{
		outcome: &domain.Outcome{
			ID:        p.newID(),
			Handler:   p.handler.Name(),
			State:     domain.StateReceived,
			StartedAt: p.now(),
		},
	}
	inv.log = logger.For(inv.outcome.ID)
	inv.started = inv.outcome.StartedAt

	file, err := domain.NewIncomingFile(path)
	if err != nil {
		return p.finish(ctx, inv, domain.StateReceived, err)
	}
	inv.outcome.File = file
	inv.log.Debug("Received %s (handler %s)", file.Path, p.handler.Name())

	// 0. CONFIGURATION (unknown checks fail before the file is touched)
	checks := p.handler.Checks()
	if err := p.runner.Validate(checks); err != nil {
		return p.finish(ctx, inv, domain.StateReceived, err)
	}

	// 1. CLASSIFY
	cls := p.handler.Classify(file.Name)
	if !cls.Matched {
		return p.finish(ctx, inv, domain.StateClassified,
			fmt.Errorf("%w: %s", domain.ErrNoPatternMatched, file.Name))
	}
	inv.outcome.Classification = cls
	p.advance(inv, domain.StateClassified)

	// 2. RESOLVE HIERARCHY
	hpath, err := p.handler.ResolveHierarchy(ctx, file, cls)
	if err == nil && hpath == "" {
		err = fmt.Errorf("empty hierarchy path")
	}
	if err != nil {
		if !errors.Is(err, domain.ErrResolution) {
			err = fmt.Errorf("%w: %w", domain.ErrResolution, err)
		}
		return p.finish(ctx, inv, domain.StateHierarchyResolved, err)
	}
	inv.outcome.Path = hpath
	p.advance(inv, domain.StateHierarchyResolved)

	// 3-4. CHECK AND PUBLISH (working copy released before any report)
	stage, err := p.checkAndPublish(ctx, inv, file, cls, checks)
	if err != nil {
		return p.finish(ctx, inv, stage, err)
	}

	return p.finish(ctx, inv, domain.StateDone, nil)
}

// checkAndPublish owns the working copy for the rest of the invocation.
// It returns the stage being attempted when an error occurred.
func (p *Pipeline) checkAndPublish(
	ctx context.Context,
	inv *invocation,
	file *domain.IncomingFile,
	cls domain.Classification,
	checks []domain.CheckRequest,
) (stage domain.State, err error) {
	release, err := p.handler.Prepare(ctx, file, cls)
	if release != nil {
		defer func() {
			if rerr := release(); rerr != nil {
				inv.log.Error("Removing working copy of %s: %v", file.Name, rerr)
			}
			file.WorkingCopy = ""
		}()
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFormat) {
			inv.outcome.Checks = p.runner.StructuralFailure(file, err)
		}
		return domain.StateChecked, fmt.Errorf("prepare: %w", err)
	}

	outcome, err := p.runner.Run(ctx, file, checks)
	inv.outcome.Checks = outcome
	if err != nil {
		return domain.StateChecked, err
	}
	p.advance(inv, domain.StateChecked)

	opts := p.handler.PublishOptions(cls, p.config.Options)
	record, err := p.publisher.Publish(ctx, PublishRequest{
		File:           file,
		Path:           inv.outcome.Path,
		Handler:        p.handler.Name(),
		Classification: cls,
		Options:        opts,
	})
	inv.outcome.Record = record
	if err != nil {
		return domain.StatePublished, err
	}
	if p.metrics != nil {
		for _, res := range record.Destinations {
			if res.Status == domain.StatusWritten && res.Destination != domain.DestinationIndex {
				p.metrics.ObservePublished(p.handler.Name(), res.Destination, record.Bytes)
			}
		}
	}
	p.advance(inv, domain.StatePublished)
	return domain.StateDone, nil
}

// advance records a forward transition and its stage duration.
func (p *Pipeline) advance(inv *invocation, to domain.State) {
	o := inv.outcome
	if !domain.CanTransition(o.State, to) {
		inv.log.Error("Illegal transition %s -> %s", o.State, to)
		return
	}
	now := p.now()
	if p.metrics != nil {
		p.metrics.ObserveStage(p.handler.Name(), to, now.Sub(inv.started))
	}
	inv.started = now
	o.State = to
	inv.log.Debug("%s -> %s", o.File.Name, to)
}

// finish moves the invocation to its terminal state. The working copy has
// already been released when it runs.
func (p *Pipeline) finish(ctx context.Context, inv *invocation, stage domain.State, err error) *domain.Outcome {
	o := inv.outcome
	o.FinishedAt = p.now()
	o.Stage = stage

	name := ""
	if o.File != nil {
		name = o.File.Name
	}

	if err == nil {
		p.advance(inv, domain.StateDone)
		inv.log.Info("Published %s to %s", name, o.Path)
		p.observe(o)
		return o
	}

	se := domain.NewStageError(stage, name, err)
	if failure := o.Checks.FirstFailure(); failure != nil {
		se.Diagnostic = failure.Diagnostic
	}
	o.Err = se
	if errors.Is(err, domain.ErrNoPatternMatched) {
		o.State = domain.StateRejected
	} else {
		o.State = domain.StateFailed
	}

	p.report(ctx, inv)
	p.observe(o)
	return o
}

func (p *Pipeline) report(ctx context.Context, inv *invocation) {
	o := inv.outcome
	report := domain.NewReport(o, p.config.Recipient)
	if failure := o.Checks.FirstFailure(); failure != nil {
		report.DiagLog = failure.LogPath
	}

	if p.quarantine != nil && o.File != nil {
		loc, err := p.quarantine.Keep(ctx, o.File, o.ID)
		if err != nil {
			inv.log.Error("Quarantining %s: %v", o.File.Name, err)
		} else {
			report.Quarantined = loc
		}
	}

	switch o.Err.Kind {
	case domain.KindData:
		inv.log.Warn("%s %s: %v", o.State, report.File, o.Err)
	default:
		inv.log.Error("%s %s: %v", o.State, report.File, o.Err)
	}

	if p.reporter == nil {
		return
	}
	if err := p.reporter.Report(ctx, report); err != nil {
		inv.log.Error("Sending report for %s: %v", report.File, err)
	}
}

func (p *Pipeline) observe(o *domain.Outcome) {
	if p.metrics != nil {
		p.metrics.ObserveOutcome(o.Handler, o.State, o.Stage)
	}
}
