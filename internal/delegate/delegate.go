// Package delegate runs the external executables the pipeline hands work to:
// path evaluators and compliance checkers.
package delegate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// waitDelay bounds how long a cancelled delegate may hold its output pipes.
const waitDelay = 5 * time.Second

// Command is one delegate invocation.
type Command struct {
	// Path is the executable.
	Path string

	// Args are passed verbatim.
	Args []string

	// Env is the complete environment of the child. Nil means an empty
	// environment, never the parent's.
	Env []string
}

// Result is what a delegate produced.
type Result struct {
	// Output is stdout and stderr interleaved.
	Output []byte

	// ExitCode is the process exit status.
	ExitCode int
}

// Run executes the command and waits for it. A non-zero exit is not an
// error; failing to start, or being cancelled, is.
func Run(ctx context.Context, c Command) (*Result, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("delegate: empty command")
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = c.Env
	if cmd.Env == nil {
		cmd.Env = []string{}
	}
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("delegate %s cancelled: %w", c.Path, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("delegate %s: %w", c.Path, err)
		}
		return &Result{Output: out.Bytes(), ExitCode: exitErr.ExitCode()}, nil
	}
	return &Result{Output: out.Bytes()}, nil
}

// MergeEnv applies NAME=VALUE overrides on top of base. Later assignments
// win; the result is sorted by name.
func MergeEnv(base, overrides []string) ([]string, error) {
	vars := make(map[string]string, len(base)+len(overrides))
	for _, kv := range base {
		name, value, ok := strings.Cut(kv, "=")
		if ok && name != "" {
			vars[name] = value
		}
	}
	for _, kv := range overrides {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid environment assignment %q, want NAME=VALUE", kv)
		}
		vars[name] = value
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	env := make([]string, 0, len(names))
	for _, name := range names {
		env = append(env, name+"="+vars[name])
	}
	return env, nil
}
