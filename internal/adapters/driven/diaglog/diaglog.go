// Package diaglog keeps per-file check diagnostic logs.
package diaglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.DiagnosticLog = (*Log)(nil)

// Log appends diagnostics to <dir>/<file name>.log. One log per file
// identity keeps concurrent invocations from interleaving.
type Log struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a diagnostic log directory.
func New(dir string) (*Log, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: log directory is required", domain.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Log{dir: dir, now: time.Now}, nil
}

// Path returns the log file of fileName.
func (l *Log) Path(fileName string) string {
	return filepath.Join(l.dir, filepath.Base(fileName)+".log")
}

// Append writes one timestamped entry and returns the log path.
func (l *Log) Append(fileName, check, text string) (string, error) {
	if fileName == "" || filepath.Base(fileName) != fileName {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrInvalidInput, fileName)
	}
	path := l.Path(fileName)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", l.now().UTC().Format(time.RFC3339), check)
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n")

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
