// Package app assembles the adapters named by the settings into pipelines.
//
// An App owns the shared resources of one process (NATS connection, index
// database, metrics registry). Pipelines built from it share those resources
// but hold no mutable state of their own, so they may run concurrently.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/oceandata/ingest/internal/adapters/driven/diaglog"
	"github.com/oceandata/ingest/internal/adapters/driven/evaluator"
	"github.com/oceandata/ingest/internal/adapters/driven/metrics"
	"github.com/oceandata/ingest/internal/adapters/driven/mirror"
	"github.com/oceandata/ingest/internal/adapters/driven/objectstore/filesystem"
	"github.com/oceandata/ingest/internal/adapters/driven/objectstore/natsstore"
	"github.com/oceandata/ingest/internal/adapters/driven/quarantine"
	"github.com/oceandata/ingest/internal/adapters/driven/report"
	"github.com/oceandata/ingest/internal/adapters/driven/storage/sqlite"
	"github.com/oceandata/ingest/internal/checks"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
	"github.com/oceandata/ingest/internal/core/ports/driving"
	"github.com/oceandata/ingest/internal/core/services"
	"github.com/oceandata/ingest/internal/handlers/generic"
	"github.com/oceandata/ingest/internal/handlers/gsla"
	"github.com/oceandata/ingest/internal/logger"
	"github.com/oceandata/ingest/internal/netcdf"
)

// Handler family names.
const (
	FamilyGeneric = generic.Name
	FamilyGSLA    = gsla.Name
)

// HandlerSpec selects and parameterises one handler family.
type HandlerSpec struct {
	// Family is FamilyGeneric or FamilyGSLA.
	Family string

	// Filter is the generic handler's optional file name expression.
	Filter string

	// PathEval is the generic handler's hierarchy path executable.
	PathEval string

	// Checks is a space and/or comma separated check list. For the gsla
	// family an empty list falls back to gsla.checks.
	Checks string

	// Recipient overrides report.recipient when set.
	Recipient string
}

// App holds the adapters shared by every pipeline of one process.
type App struct {
	settings domain.Settings
	env      []string

	registry   *checks.Registry
	probe      *netcdf.Probe
	objects    driven.ObjectStore
	mirror     driven.Mirror
	index      *sqlite.Store
	diag       driven.DiagnosticLog
	quarantine driven.Quarantine
	reporter   driven.Reporter
	metrics    *metrics.Prometheus
	conn       *nats.Conn

	now func() time.Time
}

// New validates settings and opens every configured adapter. env is the
// complete environment handed to external delegates.
func New(ctx context.Context, settings domain.Settings, env []string) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		settings: settings,
		env:      env,
		probe:    netcdf.NewProbe(),
		metrics:  metrics.New(),
		now:      time.Now,
	}
	if err := a.open(ctx); err != nil {
		_ = a.release()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	s := a.settings
	var err error

	// 1. CHECK REGISTRY
	if a.registry, err = checks.FromSettings(s.Checks, a.env); err != nil {
		return err
	}

	// 2. NATS (object store backend and/or report subject)
	if s.Publish.ObjectBackend == domain.ObjectBackendNATS || (s.Report.NATSSubject != "" && s.Publish.NATSURL != "") {
		if a.conn, err = natsstore.Dial(s.Publish.NATSURL); err != nil {
			return err
		}
	}

	// 3. PUBLISH DESTINATIONS
	switch s.Publish.ObjectBackend {
	case domain.ObjectBackendNATS:
		a.objects, err = natsstore.Open(ctx, a.conn, s.Publish.NATSBucket)
	default:
		a.objects, err = filesystem.New(s.Publish.ObjectDir)
	}
	if err != nil {
		return err
	}
	if a.mirror, err = mirror.New(s.Publish.MirrorDir); err != nil {
		return err
	}
	if s.Publish.Index {
		if a.index, err = sqlite.NewStore(s.Publish.IndexDir); err != nil {
			return err
		}
	}

	// 4. FAILURE HANDLING
	if s.Paths.LogDir != "" {
		if a.diag, err = diaglog.New(s.Paths.LogDir); err != nil {
			return err
		}
	}
	if s.Paths.ErrorDir != "" {
		if a.quarantine, err = quarantine.New(s.Paths.ErrorDir); err != nil {
			return err
		}
	}
	reporters := report.Fanout{report.LogReporter{}}
	if s.Paths.ReportDir != "" {
		fr, err := report.NewFileReporter(s.Paths.ReportDir)
		if err != nil {
			return err
		}
		reporters = append(reporters, fr)
	}
	if s.Report.NATSSubject != "" {
		if a.conn == nil {
			logger.Warn("report.nats_subject is set but publish.nats_url is not; reports will not be published")
		} else {
			nr, err := report.NewNATSReporter(a.conn, s.Report.NATSSubject)
			if err != nil {
				return err
			}
			reporters = append(reporters, nr)
		}
	}
	a.reporter = reporters

	return nil
}

// Settings returns the settings the app was built from.
func (a *App) Settings() domain.Settings {
	return a.settings
}

// Metrics returns the metrics recorder shared by all pipelines.
func (a *App) Metrics() *metrics.Prometheus {
	return a.metrics
}

// Handler builds the handler described by spec.
func (a *App) Handler(spec HandlerSpec) (driven.Handler, error) {
	switch spec.Family {
	case FamilyGeneric:
		if spec.PathEval == "" {
			return nil, fmt.Errorf("%w: the generic handler needs a path evaluator", domain.ErrInvalidInput)
		}
		filter, err := generic.CompileFilter(spec.Filter)
		if err != nil {
			return nil, err
		}
		eval, err := evaluator.NewExec(spec.PathEval, a.env)
		if err != nil {
			return nil, err
		}
		return generic.New(eval,
			generic.WithFilter(filter),
			generic.WithChecks(domain.ParseCheckList(spec.Checks)),
		), nil
	case FamilyGSLA:
		reqs := a.settings.GSLAChecks
		if spec.Checks != "" {
			reqs = domain.ParseCheckList(spec.Checks)
		}
		return gsla.New(a.settings.Paths.WorkDir, reqs), nil
	default:
		return nil, fmt.Errorf("%w: unknown handler %q", domain.ErrInvalidInput, spec.Family)
	}
}

// Pipeline builds the pipeline for spec.
func (a *App) Pipeline(spec HandlerSpec) (driving.Pipeline, error) {
	handler, err := a.Handler(spec)
	if err != nil {
		return nil, err
	}

	recipient := a.settings.Report.Recipient
	if spec.Recipient != "" {
		recipient = spec.Recipient
	}

	var indexer driven.Indexer
	if a.index != nil {
		indexer = a.index
	}

	runner := services.NewComplianceRunner(a.probe, a.registry, a.diag)
	publisher := services.NewPublisher(a.objects, a.mirror, indexer, a.probe, a.settings.Publish.ObjectRoot)

	return services.NewPipeline(handler, runner, publisher, a.reporter, a.quarantine, a.metrics,
		services.PipelineConfig{
			Options: domain.PublishOptions{
				Index:                  a.settings.Publish.Index,
				ForceOverwriteOnMirror: a.settings.Publish.ForceOverwriteMirror,
			},
			Recipient: recipient,
		}), nil
}

// Close writes the metrics textfile, if configured, and releases resources.
func (a *App) Close() error {
	var errs []error
	if a.settings.MetricsTextfile != "" && a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.settings.MetricsTextfile, a.now()); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}
	if err := a.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) release() error {
	var errs []error
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.conn != nil {
		if err := a.conn.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenCatalogue opens the index catalogue read side without any other adapter.
func OpenCatalogue(settings domain.Settings) (*sqlite.Store, error) {
	if settings.Publish.IndexDir == "" {
		return nil, fmt.Errorf("%w: publish.index_dir is not set", domain.ErrInvalidConfig)
	}
	return sqlite.NewStore(settings.Publish.IndexDir)
}
