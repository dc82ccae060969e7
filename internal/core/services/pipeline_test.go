package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceandata/ingest/internal/adapters/driven/storage/memory"
	"github.com/oceandata/ingest/internal/core/domain"
)

// pipelineFixture wires a pipeline from mocks and in-memory stores.
type pipelineFixture struct {
	handler    *mockHandler
	probe      *mockProbe
	registry   *mockRegistry
	objects    *memory.ObjectStore
	mirror     *mockMirror
	index      *mockIndexer
	reporter   *memory.Reporter
	quarantine *mockQuarantine
	metrics    *mockMetrics
	options    domain.PublishOptions
}

func newPipelineFixture(t *testing.T, handler *mockHandler, checks ...*mockCheck) *pipelineFixture {
	t.Helper()
	if handler.workDir == "" {
		handler.workDir = t.TempDir()
	}
	return &pipelineFixture{
		handler:    handler,
		probe:      &mockProbe{},
		registry:   newMockRegistry(checks...),
		objects:    memory.NewObjectStore(),
		mirror:     newMockMirror(),
		index:      &mockIndexer{},
		reporter:   memory.NewReporter(),
		quarantine: &mockQuarantine{},
		metrics:    newMockMetrics(),
		options:    domain.PublishOptions{ForceOverwriteOnMirror: true},
	}
}

func (f *pipelineFixture) pipeline() *Pipeline {
	runner := NewComplianceRunner(f.probe, f.registry, &mockDiagLog{})
	publisher := NewPublisher(f.objects, f.mirror, f.index, &mockInspector{format: "netcdf-classic"}, "IMOS")
	p := NewPipeline(f.handler, runner, publisher, f.reporter, f.quarantine, f.metrics, PipelineConfig{
		Options:   f.options,
		Recipient: "ops@example.org",
	})
	p.newID = func() string { return "inv-1" }
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return base }
	return p
}

func gslaHandler(category domain.Category, path domain.HierarchyPath) *mockHandler {
	return &mockHandler{
		name:       "gsla",
		cls:        domain.Matched(category, map[string]string{domain.FieldYear: "2011"}),
		path:       path,
		decompress: category != domain.CategoryDelayedModeYearly,
		noIndex:    category == domain.CategoryDelayedModeYearly,
	}
}

func TestPipeline_Process_YearlyFileSkipsIndex(t *testing.T) {
	handler := gslaHandler(domain.CategoryDelayedModeYearly,
		"OceanCurrent/GSLA/DM00/yearfiles/IMOS_OceanCurrent_HV_2011_C-20141014T015543Z.nc.gz")
	f := newPipelineFixture(t, handler)
	f.options.Index = true
	src := writeFile(t.TempDir(), "IMOS_OceanCurrent_HV_2011_C-20141014T015543Z.nc.gz", "gz")

	outcome := f.pipeline().Process(context.Background(), src)

	require.True(t, outcome.Succeeded(), "%v", outcome.Err)
	assert.Equal(t, domain.StateDone, outcome.Stage)
	assert.Nil(t, outcome.Err)
	assert.Empty(t, f.index.entries)
	_, indexed := outcome.Record.Result(domain.DestinationIndex)
	assert.False(t, indexed)

	assert.Equal(t, []string{"IMOS/OceanCurrent/GSLA/DM00/yearfiles/IMOS_OceanCurrent_HV_2011_C-20141014T015543Z.nc.gz"},
		f.objects.Keys())
	assert.Equal(t, 1, f.mirror.writes)
	assert.Equal(t, []string{src}, f.probe.paths, "yearly files are probed as delivered")
	assert.Empty(t, f.reporter.Reports())
	assert.Equal(t, []string{"done@done"}, f.metrics.outcomes)
	assert.Equal(t, int64(2), f.metrics.published[domain.DestinationObjectStore])
}

func TestPipeline_Process_NRTFileIndexesWorkingCopy(t *testing.T) {
	handler := gslaHandler(domain.CategoryNearRealTime, "OceanCurrent/GSLA/NRT00/2011/IMOS_GSLA_NRT00.nc.gz")
	f := newPipelineFixture(t, handler)
	f.options.Index = true
	src := writeFile(t.TempDir(), "IMOS_GSLA_NRT00.nc.gz", "compressed")

	outcome := f.pipeline().Process(context.Background(), src)

	require.True(t, outcome.Succeeded(), "%v", outcome.Err)
	require.Len(t, handler.workingCopies, 1)
	assert.Equal(t, handler.workingCopies, f.probe.paths)
	require.Len(t, f.index.entries, 1)
	assert.Equal(t, domain.CategoryNearRealTime, f.index.entries[0].Category)

	_, err := os.Stat(handler.workingCopies[0])
	assert.True(t, os.IsNotExist(err), "working copy removed after Done")
	assert.Empty(t, outcome.File.WorkingCopy)
}

func TestPipeline_Process_UnmatchedNameIsRejected(t *testing.T) {
	handler := &mockHandler{name: "gsla", cls: domain.NoMatch()}
	f := newPipelineFixture(t, handler)
	src := writeFile(t.TempDir(), "random_file.txt", "hello")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateRejected, outcome.State)
	assert.Equal(t, domain.StateClassified, outcome.Stage)
	require.NotNil(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, domain.ErrNoPatternMatched)
	assert.Equal(t, domain.KindData, outcome.Err.Kind)

	assert.Zero(t, handler.resolveCalls)
	assert.Zero(t, handler.prepareCalls)
	assert.Empty(t, f.probe.paths)
	assert.Zero(t, f.objects.Puts())
	assert.Zero(t, f.mirror.writes)

	reports := f.reporter.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, domain.SeverityInfo, reports[0].Severity)
	assert.Equal(t, "ops@example.org", reports[0].Recipient)
	assert.Equal(t, src, reports[0].File)
	assert.Equal(t, "inv-1", reports[0].ID)
	assert.Equal(t, []string{"/errors/inv-1-random_file.txt"}, f.quarantine.kept)
	assert.Equal(t, "/errors/inv-1-random_file.txt", reports[0].Quarantined)
	assert.Equal(t, []string{"rejected@classified"}, f.metrics.outcomes)
}

func TestPipeline_Process_ProbeFailureIsFailedAtChecked(t *testing.T) {
	handler := gslaHandler(domain.CategoryNearRealTime, "OceanCurrent/GSLA/NRT00/2011/x.nc.gz")
	f := newPipelineFixture(t, handler)
	f.probe.err = errors.New("unknown file format")
	src := writeFile(t.TempDir(), "x.nc.gz", "not netcdf")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.StateChecked, outcome.Stage)
	assert.Equal(t, domain.HierarchyPath("OceanCurrent/GSLA/NRT00/2011/x.nc.gz"), outcome.Path)
	assert.ErrorIs(t, outcome.Err, domain.ErrInvalidFormat)
	assert.Equal(t, domain.KindData, outcome.Err.Kind)
	assert.Nil(t, outcome.Record)
	assert.Zero(t, f.objects.Puts())
	assert.Zero(t, f.mirror.writes)

	require.Len(t, handler.workingCopies, 1)
	_, err := os.Stat(handler.workingCopies[0])
	assert.True(t, os.IsNotExist(err), "working copy removed on Failed")

	reports := f.reporter.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, domain.StateFailed, reports[0].State)
	assert.Equal(t, domain.StateChecked, reports[0].Stage)
	assert.Equal(t, "/logs/x.nc.gz.log", reports[0].DiagLog)
}

func TestPipeline_Process_ComplianceFailureCarriesDiagnostic(t *testing.T) {
	handler := &mockHandler{
		name:   "generic",
		cls:    domain.Matched(domain.CategoryGeneric, nil),
		path:   "ANMN/NRS/a.nc",
		checks: []domain.CheckRequest{{Name: "cf"}, {Name: "imos", Version: "1.4"}},
	}
	cf := &mockCheck{name: "cf"}
	imos := &mockCheck{name: "imos", status: domain.CheckFailed, output: "line one\nline two"}
	f := newPipelineFixture(t, handler, cf, imos)
	src := writeFile(t.TempDir(), "a.nc", "CDF")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.StateChecked, outcome.Stage)
	assert.Equal(t, domain.KindCompliance, outcome.Err.Kind)
	assert.Equal(t, "line one\nline two", outcome.Err.Diagnostic)

	reports := f.reporter.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, domain.SeverityError, reports[0].Severity)
	assert.Equal(t, "line one\nline two", reports[0].Diagnostic)
	assert.Zero(t, f.objects.Puts())
}

func TestPipeline_Process_UnknownCheckFailsBeforeClassifying(t *testing.T) {
	handler := &mockHandler{
		name:   "generic",
		cls:    domain.Matched(domain.CategoryGeneric, nil),
		path:   "a/b.nc",
		checks: []domain.CheckRequest{{Name: "nonexistent"}},
	}
	f := newPipelineFixture(t, handler)
	src := writeFile(t.TempDir(), "b.nc", "CDF")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.StateReceived, outcome.Stage)
	assert.ErrorIs(t, outcome.Err, domain.ErrUnknownCheck)
	assert.Equal(t, domain.KindSystem, outcome.Err.Kind)
	assert.Zero(t, handler.classifyCalls)
}

func TestPipeline_Process_ResolutionFailure(t *testing.T) {
	tests := []struct {
		name string
		path domain.HierarchyPath
		err  error
	}{
		{"delegate error", "", errors.New("exit status 1")},
		{"empty path", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{
				name:       "generic",
				cls:        domain.Matched(domain.CategoryGeneric, nil),
				path:       tt.path,
				resolveErr: tt.err,
			}
			f := newPipelineFixture(t, handler)
			src := writeFile(t.TempDir(), "b.nc", "CDF")

			outcome := f.pipeline().Process(context.Background(), src)

			assert.Equal(t, domain.StateFailed, outcome.State)
			assert.Equal(t, domain.StateHierarchyResolved, outcome.Stage)
			assert.ErrorIs(t, outcome.Err, domain.ErrResolution)
			assert.Equal(t, domain.KindResolution, outcome.Err.Kind)
			assert.Zero(t, handler.prepareCalls)
		})
	}
}

func TestPipeline_Process_PrepareFailure(t *testing.T) {
	handler := &mockHandler{
		name:       "gsla",
		cls:        domain.Matched(domain.CategoryDelayedMode, nil),
		path:       "OceanCurrent/GSLA/DM00/2011/x.nc.gz",
		prepareErr: fmt.Errorf("decompress x.nc.gz: %w: gzip: invalid header", domain.ErrInvalidFormat),
	}
	f := newPipelineFixture(t, handler)
	src := writeFile(t.TempDir(), "x.nc.gz", "plain")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.StateChecked, outcome.Stage)
	assert.Equal(t, domain.KindData, outcome.Err.Kind)
	assert.Contains(t, outcome.Err.Error(), "gzip: invalid header")
	assert.Empty(t, f.probe.paths)

	failure := outcome.Checks.FirstFailure()
	require.NotNil(t, failure)
	assert.Equal(t, domain.StructuralCheckName, failure.Name)
	assert.Contains(t, failure.Diagnostic, "gzip: invalid header")
	assert.Equal(t, "/logs/x.nc.gz.log", failure.LogPath)

	reports := f.reporter.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "/logs/x.nc.gz.log", reports[0].DiagLog)
}

func TestPipeline_Process_PrepareSystemFailure(t *testing.T) {
	handler := &mockHandler{
		name:       "gsla",
		cls:        domain.Matched(domain.CategoryDelayedMode, nil),
		path:       "OceanCurrent/GSLA/DM00/2011/x.nc.gz",
		prepareErr: errors.New("open work dir: permission denied"),
	}
	f := newPipelineFixture(t, handler)
	src := writeFile(t.TempDir(), "x.nc.gz", "plain")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.KindSystem, outcome.Err.Kind)
	assert.Empty(t, outcome.Checks.Results)
}

func TestPipeline_Process_PublishFailure(t *testing.T) {
	handler := gslaHandler(domain.CategoryDelayedMode, "OceanCurrent/GSLA/DM00/2011/x.nc.gz")
	f := newPipelineFixture(t, handler)
	f.mirror.err = errors.New("no space left on device")
	src := writeFile(t.TempDir(), "x.nc.gz", "data")

	outcome := f.pipeline().Process(context.Background(), src)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.StatePublished, outcome.Stage)
	assert.Equal(t, domain.KindPublish, outcome.Err.Kind)
	require.NotNil(t, outcome.Record)
	obj, _ := outcome.Record.Result(domain.DestinationObjectStore)
	assert.Equal(t, domain.StatusWritten, obj.Status, "partial publish is recorded")

	_, err := os.Stat(handler.workingCopies[0])
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_Process_RerunIsIdempotent(t *testing.T) {
	handler := gslaHandler(domain.CategoryDelayedMode, "OceanCurrent/GSLA/DM00/2011/x.nc.gz")
	f := newPipelineFixture(t, handler)
	src := writeFile(t.TempDir(), "x.nc.gz", "data")
	p := f.pipeline()

	first := p.Process(context.Background(), src)
	second := p.Process(context.Background(), src)

	require.True(t, first.Succeeded())
	require.True(t, second.Succeeded())
	assert.Equal(t, 1, f.objects.Puts())
	obj, _ := second.Record.Result(domain.DestinationObjectStore)
	assert.Equal(t, domain.StatusAlreadyPresent, obj.Status)
}

func TestPipeline_Process_EmptyPath(t *testing.T) {
	f := newPipelineFixture(t, &mockHandler{name: "generic"})

	outcome := f.pipeline().Process(context.Background(), "")

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, domain.StateReceived, outcome.Stage)
	assert.ErrorIs(t, outcome.Err, domain.ErrInvalidInput)
	assert.Empty(t, f.quarantine.kept)
	assert.Len(t, f.reporter.Reports(), 1)
}

func TestPipeline_Process_NilOptionalCollaborators(t *testing.T) {
	handler := &mockHandler{name: "generic", cls: domain.NoMatch()}
	runner := NewComplianceRunner(&mockProbe{}, newMockRegistry(), nil)
	publisher := NewPublisher(memory.NewObjectStore(), newMockMirror(), nil, nil, "IMOS")
	p := NewPipeline(handler, runner, publisher, nil, nil, nil, PipelineConfig{})
	src := writeFile(t.TempDir(), "random_file.txt", "x")

	outcome := p.Process(context.Background(), src)

	assert.Equal(t, domain.StateRejected, outcome.State)
	assert.NotEmpty(t, outcome.ID)
	assert.Equal(t, "generic", p.Handler())
	assert.Equal(t, filepath.Base(src), outcome.File.Name)
}
