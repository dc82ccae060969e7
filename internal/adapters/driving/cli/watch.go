package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/oceandata/ingest/internal/app"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driving"
	"github.com/oceandata/ingest/internal/logger"
)

var (
	watchFlags    handlerFlags
	watchHandler  string
	watchWorkers  int
	watchRate     float64
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Process files as they arrive in a directory",
	Long: `Watches DIR and runs one independent pipeline invocation per arriving
file, with at most --workers running at once and no more than --rate started
per second. An event for a file already being processed is dropped.

Files should be moved into DIR once complete; a file written in place may be
picked up before it is whole. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchHandler, "handler", app.FamilyGSLA, "handler family: gsla or generic")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "concurrent invocations (default watch.workers)")
	watchCmd.Flags().Float64Var(&watchRate, "rate", 0, "invocations started per second (default watch.rate)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also process files already in DIR")
	watchFlags.registerGeneric(watchCmd)
	watchFlags.registerCommon(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	workers, rps := settings.Watch.Workers, settings.Watch.Rate
	if watchWorkers > 0 {
		workers = watchWorkers
	}
	if watchRate > 0 {
		rps = watchRate
	}

	rt, closeRuntime, err := openRuntime(ctx, watchFlags.env)
	if err != nil {
		return err
	}
	defer closeRuntime()

	pipeline, err := rt.Pipeline(watchFlags.spec(watchHandler))
	if err != nil {
		return err
	}

	w := &dirWatcher{
		dir:      dir,
		pipeline: pipeline,
		workers:  workers,
		limiter:  newLimiter(rps),
		existing: watchExisting,
		onOutcome: func(o *domain.Outcome) {
			printOutcome(cmd, o)
		},
	}
	cmd.Printf("Watching %s with the %s handler (%d workers)\n", dir, pipeline.Handler(), workers)
	return w.Run(ctx)
}

// newLimiter allows rps starts per second. A non-positive rate is unlimited.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// dirWatcher dispatches arriving files to a pipeline.
type dirWatcher struct {
	dir       string
	pipeline  driving.Pipeline
	workers   int
	limiter   *rate.Limiter
	existing  bool
	onOutcome func(*domain.Outcome)

	mu       sync.Mutex
	inflight map[string]bool

	// outMu serialises onOutcome so summary lines from workers never interleave.
	outMu sync.Mutex
}

func (w *dirWatcher) emit(o *domain.Outcome) {
	if w.onOutcome == nil {
		return
	}
	w.outMu.Lock()
	defer w.outMu.Unlock()
	w.onOutcome(o)
}

// Run blocks until ctx is cancelled or the watcher fails. In-flight
// invocations are allowed to finish.
func (w *dirWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.inflight = make(map[string]bool)
	var g errgroup.Group
	if w.workers > 0 {
		g.SetLimit(w.workers)
	}
	defer func() { _ = g.Wait() }()

	// Pipelines run to completion once started, so they do not inherit
	// the watch cancellation.
	dispatch := func(path string) error {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		if !w.claim(path) {
			logger.Debug("Skipping %s: already in flight", filepath.Base(path))
			return nil
		}
		g.Go(func() error {
			defer w.release(path)
			w.emit(w.pipeline.Process(context.WithoutCancel(ctx), path))
			return nil
		})
		return nil
	}

	// 1. FILES ALREADY PRESENT
	if w.existing {
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || hidden(e.Name()) {
				continue
			}
			if err := dispatch(filepath.Join(w.dir, e.Name())); err != nil {
				return ignoreCancel(err)
			}
		}
	}

	// 2. ARRIVALS
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !arrival(event) {
				continue
			}
			if err := dispatch(event.Name); err != nil {
				return ignoreCancel(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", w.dir, err)
		}
	}
}

// ignoreCancel treats the end of the watch as a clean stop.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// claim marks path in flight, returning false if it already was.
func (w *dirWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inflight[path] {
		return false
	}
	w.inflight[path] = true
	return true
}

func (w *dirWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, path)
}

// arrival reports whether event is a new regular file worth processing.
func arrival(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) || hidden(filepath.Base(event.Name)) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.Mode().IsRegular()
}

// hidden names are temporary files from in-progress copies.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
