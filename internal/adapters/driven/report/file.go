package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

var _ driven.Reporter = (*FileReporter)(nil)

// FileReporter writes each report to <dir>/<id>.json.
type FileReporter struct {
	dir string
}

// NewFileReporter creates the report directory if needed.
func NewFileReporter(dir string) (*FileReporter, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: report directory is required", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &FileReporter{dir: dir}, nil
}

// Report writes the report atomically.
func (r *FileReporter) Report(_ context.Context, report domain.Report) error {
	if report.ID == "" {
		return fmt.Errorf("%w: report has no id", domain.ErrInvalidInput)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	dst := filepath.Join(r.dir, report.ID+".json")
	tmp, err := os.CreateTemp(r.dir, ".report-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
