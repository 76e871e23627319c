package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/daydemir/phaser/internal/utils"
	"github.com/google/uuid"
)

// waitDelay bounds how long we wait for stdout/stderr to drain after the
// process is killed on timeout
const waitDelay = 2 * time.Second

// Claude invokes the Claude Code CLI in print mode with a JSON schema
type Claude struct {
	BinaryPath string
	Model      string

	// KeepAwake wraps the call in `caffeinate -dimsu` when caffeinate exists
	KeepAwake bool

	WorkDir string

	// Trace receives debug lines about each call; nil disables tracing
	Trace func(string)

	lookPath func(string) (string, error)
}

// NewClaude creates a new Claude invoker
func NewClaude(binaryPath string) *Claude {
	if binaryPath == "" {
		binaryPath = "claude"
	}
	// Try to resolve the binary path
	resolved := utils.ResolveBinaryPath(binaryPath)
	return &Claude{BinaryPath: resolved, lookPath: exec.LookPath}
}

// Invoke runs the CLI and returns the validated structured output
func (c *Claude) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	argv := c.buildArgs(req)

	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(callCtx, argv[0], argv[1:]...)
	cmd.Dir = c.WorkDir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	id := uuid.NewString()[:8]
	c.trace("claude call %s (%s): %s", id, req.Label, shellescape.QuoteCommand(argv))

	if req.Progress != nil {
		req.Progress.Start()
	}
	start := time.Now()
	err := cmd.Run()
	if req.Progress != nil {
		req.Progress.Stop()
	}
	c.trace("claude call %s finished in %s", id, time.Since(start).Round(time.Millisecond))

	if err != nil {
		return nil, c.classify(ctx, callCtx, req, err, stderr.String())
	}

	out, err := ExtractStructuredOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	if err := ValidateOutput(req.Schema, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Claude) classify(parent, callCtx context.Context, req Request, err error, stderr string) error {
	if parent.Err() != nil {
		return fmt.Errorf("claude call interrupted: %w", parent.Err())
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, req.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &InvocationError{ExitCode: exitErr.ExitCode(), Stderr: stderr}
	}
	if utils.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrInvocationFailed, utils.ClaudeNotFoundError())
	}
	return fmt.Errorf("%w: %v", ErrInvocationFailed, err)
}

func (c *Claude) buildArgs(req Request) []string {
	var args []string

	// Keep the machine awake for long phases
	if c.KeepAwake && c.lookPath != nil {
		if path, err := c.lookPath("caffeinate"); err == nil {
			args = append(args, path, "-dimsu")
		}
	}

	// Skip permissions for autonomous execution
	args = append(args, c.BinaryPath, "--dangerously-skip-permissions", "-p", "--verbose",
		"--output-format", "json")

	if len(req.Schema) > 0 {
		args = append(args, "--json-schema", string(req.Schema))
	}

	// Model
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}

	return append(args, req.Instruction)
}

func (c *Claude) trace(format string, args ...any) {
	if c.Trace != nil {
		c.Trace(fmt.Sprintf(format, args...))
	}
}
