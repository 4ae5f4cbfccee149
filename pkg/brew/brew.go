// Package brew invokes the Homebrew CLI as a subprocess and parses its
// structured (JSON) and line-oriented output. It owns the translation of
// non-zero exit statuses into CommandError values; it performs no retries
// and no caching.
package brew

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runner executes one brew subcommand and returns its stdout. It exists as
// a seam so tests can substitute canned output without launching brew.
type runner interface {
	run(ctx context.Context, args ...string) ([]byte, error)
}

// execRunner launches the real brew binary.
type execRunner struct {
	binary string
}

func (r *execRunner) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &CommandError{
				Args:     append([]string{r.binary}, args...),
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(string(exitErr.Stderr)),
			}
		}
		return nil, fmt.Errorf("failed to run %s: %w", r.binary, err)
	}
	return output, nil
}

// CommandError reports a brew invocation that exited non-zero. It carries
// the exit status and whatever brew wrote to stderr.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}
