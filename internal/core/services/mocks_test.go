package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// --- Mock implementations shared by the pipeline tests ---

// mockProbe implements driven.FormatProbe.
type mockProbe struct {
	err   error
	paths []string
}

func (m *mockProbe) Probe(_ context.Context, path string) error {
	m.paths = append(m.paths, path)
	return m.err
}

// mockCheck implements driven.Check.
type mockCheck struct {
	name     string
	status   domain.CheckStatus
	output   string
	paths    []string
	versions []string
}

func (m *mockCheck) Name() string { return m.name }

func (m *mockCheck) Run(_ context.Context, path, version string) domain.CheckResult {
	m.paths = append(m.paths, path)
	m.versions = append(m.versions, version)
	status := m.status
	if status == "" {
		status = domain.CheckPassed
	}
	return domain.CheckResult{Name: m.name, Status: status, Diagnostic: m.output}
}

// mockRegistry implements driven.CheckRegistry.
type mockRegistry struct {
	checks map[string]*mockCheck
}

func newMockRegistry(checks ...*mockCheck) *mockRegistry {
	r := &mockRegistry{checks: make(map[string]*mockCheck)}
	for _, c := range checks {
		r.checks[c.name] = c
	}
	return r
}

func (r *mockRegistry) Get(name string) (driven.Check, error) {
	c, ok := r.checks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCheck, name)
	}
	return c, nil
}

func (r *mockRegistry) Names() []string {
	names := make([]string, 0, len(r.checks))
	for n := range r.checks {
		names = append(names, n)
	}
	return names
}

// mockDiagLog implements driven.DiagnosticLog.
type mockDiagLog struct {
	entries []string
	err     error
}

func (m *mockDiagLog) Append(fileName, check, text string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.entries = append(m.entries, check+": "+text)
	return "/logs/" + fileName + ".log", nil
}

// mockMirror implements driven.Mirror.
type mockMirror struct {
	files  map[domain.HierarchyPath][]byte
	writes int
	err    error
}

func newMockMirror() *mockMirror {
	return &mockMirror{files: make(map[domain.HierarchyPath][]byte)}
}

func (m *mockMirror) Write(_ context.Context, path domain.HierarchyPath, srcPath string, overwrite bool) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.files[path]; ok && !overwrite {
		return false, nil
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return false, err
	}
	m.files[path] = data
	m.writes++
	return true, nil
}

func (m *mockMirror) Location(path domain.HierarchyPath) string {
	return "/mirror/" + path.String()
}

// failingObjectStore implements driven.ObjectStore and always fails.
type failingObjectStore struct {
	puts int
}

func (f *failingObjectStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (f *failingObjectStore) Put(context.Context, string, string) error {
	f.puts++
	return errors.New("bucket unavailable")
}

func (f *failingObjectStore) Location(key string) string { return "broken://" + key }

// mockIndexer implements driven.Indexer.
type mockIndexer struct {
	entries []domain.IndexEntry
	err     error
}

func (m *mockIndexer) Index(_ context.Context, entry domain.IndexEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

// mockInspector implements driven.ContentInspector.
type mockInspector struct {
	format string
	attrs  map[string]string
	err    error
	paths  []string
}

func (m *mockInspector) Inspect(_ context.Context, path string) (string, map[string]string, error) {
	m.paths = append(m.paths, path)
	return m.format, m.attrs, m.err
}

// mockHandler implements driven.Handler.
type mockHandler struct {
	name       string
	cls        domain.Classification
	path       domain.HierarchyPath
	resolveErr error
	checks     []domain.CheckRequest
	noIndex    bool

	// decompress makes Prepare create a working copy in workDir.
	decompress bool
	workDir    string
	prepareErr error

	classifyCalls int
	resolveCalls  int
	prepareCalls  int
	workingCopies []string
}

func (m *mockHandler) Name() string { return m.name }

func (m *mockHandler) Classify(string) domain.Classification {
	m.classifyCalls++
	return m.cls
}

func (m *mockHandler) ResolveHierarchy(context.Context, *domain.IncomingFile, domain.Classification) (domain.HierarchyPath, error) {
	m.resolveCalls++
	return m.path, m.resolveErr
}

func (m *mockHandler) Prepare(_ context.Context, file *domain.IncomingFile, _ domain.Classification) (func() error, error) {
	m.prepareCalls++
	if m.prepareErr != nil {
		return nil, m.prepareErr
	}
	if !m.decompress {
		return func() error { return nil }, nil
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	wc := filepath.Join(m.workDir, "working-"+file.Name)
	if err := os.WriteFile(wc, data, 0600); err != nil {
		return nil, err
	}
	file.WorkingCopy = wc
	m.workingCopies = append(m.workingCopies, wc)
	return func() error { return os.Remove(wc) }, nil
}

func (m *mockHandler) Checks() []domain.CheckRequest { return m.checks }

func (m *mockHandler) PublishOptions(_ domain.Classification, base domain.PublishOptions) domain.PublishOptions {
	if m.noIndex {
		base.Index = false
	}
	return base
}

// mockQuarantine implements driven.Quarantine.
type mockQuarantine struct {
	kept []string
}

func (m *mockQuarantine) Keep(_ context.Context, file *domain.IncomingFile, id string) (string, error) {
	loc := "/errors/" + id + "-" + file.Name
	m.kept = append(m.kept, loc)
	return loc, nil
}

// mockMetrics implements driven.Metrics.
type mockMetrics struct {
	mu        stdsync.Mutex
	outcomes  []string
	stages    []domain.State
	published map[domain.Destination]int64
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{published: make(map[domain.Destination]int64)}
}

func (m *mockMetrics) ObserveOutcome(_ string, state, stage domain.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, string(state)+"@"+string(stage))
}

func (m *mockMetrics) ObserveStage(_ string, stage domain.State, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *mockMetrics) ObservePublished(_ string, dest domain.Destination, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[dest] += bytes
}

// writeFile creates a file with content in dir and returns its path.
func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		panic(err)
	}
	return path
}
