// Package logger provides process logging for the ingest CLI.
// Errors are always printed. When verbose mode is enabled via the --verbose
// flag, debug, progress and warning messages are printed to stderr as well.
//
// Check diagnostics never go here: they are written to file-scoped logs so
// that concurrent invocations do not interleave.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level orders log lines by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed in front of each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether lines at level l are printed.
func Enabled(l Level) bool {
	return l >= LevelError || IsVerbose()
}

// Log prints one line at level l. Lines below LevelError need verbose mode.
// Writes are serialised so concurrent lines never interleave.
func Log(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < LevelError && !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", l, fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { Log(LevelDebug, format, args...) }

func Info(format string, args ...any) { Log(LevelInfo, format, args...) }

func Warn(format string, args ...any) { Log(LevelWarn, format, args...) }

func Error(format string, args ...any) { Log(LevelError, format, args...) }

// Scoped prefixes every message with an invocation identifier so that lines
// from concurrent invocations can be told apart in the shared process log.
type Scoped struct {
	prefix string
}

// For returns a logger whose messages carry id.
func For(id string) Scoped {
	return Scoped{prefix: "[" + id + "] "}
}

func (s Scoped) Debug(format string, args ...any) { Log(LevelDebug, s.prefix+format, args...) }

func (s Scoped) Info(format string, args ...any) { Log(LevelInfo, s.prefix+format, args...) }

func (s Scoped) Warn(format string, args ...any) { Log(LevelWarn, s.prefix+format, args...) }

func (s Scoped) Error(format string, args ...any) { Log(LevelError, s.prefix+format, args...) }
