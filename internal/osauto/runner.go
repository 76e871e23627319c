// Package osauto runs the external programs used for desktop automation:
// open, osascript, afplay, git, and the system clipboard.
package osauto

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// Runner executes an external command. A zero exit status is success.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Dir is the working directory; empty means the current one
	Dir string

	// Trace receives each command line before it runs; nil disables tracing
	Trace func(string)
}

// Run executes name with args and folds stderr into the returned error
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	if r.Trace != nil {
		r.Trace(shellescape.QuoteCommand(append([]string{name}, args...)))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
