package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/oceandata/ingest/internal/adapters/driven/storage/memory"
	"github.com/oceandata/ingest/internal/app"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driving"
	"github.com/oceandata/ingest/internal/core/services"
)

// fakePipeline records the files it is given.
type fakePipeline struct {
	mu      sync.Mutex
	handler string
	paths   []string
	state   domain.State
	started chan string
	block   chan struct{}
}

func (p *fakePipeline) Handler() string { return p.handler }

func (p *fakePipeline) Process(_ context.Context, path string) *domain.Outcome {
	if p.started != nil {
		p.started <- path
	}
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.paths = append(p.paths, path)
	p.mu.Unlock()

	file, _ := domain.NewIncomingFile(path)
	o := &domain.Outcome{ID: "inv-1", File: file, Handler: p.handler, State: domain.StateDone, Stage: domain.StateDone}
	if p.state != "" && p.state != domain.StateDone {
		o.State = p.state
		o.Stage = domain.StateClassified
		o.Err = domain.NewStageError(domain.StateClassified, file.Name, domain.ErrNoPatternMatched)
	} else {
		o.Path = domain.HierarchyPath("IMOS/" + file.Name)
	}
	return o
}

func (p *fakePipeline) Paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

// fakeRuntime hands out one fakePipeline.
type fakeRuntime struct {
	pipeline *fakePipeline
	specs    []app.HandlerSpec
	settings domain.Settings
	env      []string
	closed   bool
	err      error
}

func (r *fakeRuntime) Pipeline(spec app.HandlerSpec) (driving.Pipeline, error) {
	r.specs = append(r.specs, spec)
	if r.err != nil {
		return nil, r.err
	}
	r.pipeline.handler = spec.Family
	return r.pipeline, nil
}

func (r *fakeRuntime) Close() error {
	r.closed = true
	return nil
}

// fakeCatalogue serves an in-memory index.
type fakeCatalogue struct {
	*services.IndexService
	closed bool
}

func (c *fakeCatalogue) Close() error {
	c.closed = true
	return nil
}

// testEnv holds the fakes installed for one test.
type testEnv struct {
	store     *memory.ConfigStore
	runtime   *fakeRuntime
	index     *memory.Index
	catalogue *fakeCatalogue
}

// useTestServices replaces the command services with fakes backed by a
// valid in-memory configuration.
func useTestServices(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewConfigStore()
	require.NoError(t, store.Set("publish.object_dir", "/data/objects"))
	require.NoError(t, store.Set("publish.mirror_dir", "/data/mirror"))
	require.NoError(t, store.Set("publish.index_dir", "/data/index"))

	env := &testEnv{
		store:   store,
		runtime: &fakeRuntime{pipeline: &fakePipeline{}},
		index:   memory.NewIndex(),
	}
	env.catalogue = &fakeCatalogue{IndexService: services.NewIndexService(env.index)}

	origSettings, origRuntime, origCatalogue := settingsService, newRuntime, openCatalogue
	settingsService = services.NewSettingsService(store, services.WithDefaultWorkDir("/tmp/ingest-work"))
	newRuntime = func(_ context.Context, s domain.Settings, e []string) (Runtime, error) {
		env.runtime.settings = s
		env.runtime.env = e
		return env.runtime, nil
	}
	openCatalogue = func(domain.Settings) (Catalogue, error) {
		return env.catalogue, nil
	}

	t.Cleanup(func() {
		settingsService, newRuntime, openCatalogue = origSettings, origRuntime, origCatalogue
		resetFlags(rootCmd)
	})
	return env
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
