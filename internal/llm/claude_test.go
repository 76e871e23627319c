package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/daydemir/phaser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClaude writes an executable shell script standing in for the CLI.
// The script records its arguments, one per line, in args.txt next to it.
func fakeClaude(t *testing.T, body string) (binary, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	dir := t.TempDir()
	binary = filepath.Join(dir, "claude")
	argsFile = filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsFile + "'\n" + body + "\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, argsFile
}

type countingIndicator struct {
	starts, stops int
}

func (c *countingIndicator) Start() { c.starts++ }
func (c *countingIndicator) Stop()  { c.stops++ }

func TestClaudeInvokeSuccess(t *testing.T) {
	binary, argsFile := fakeClaude(t, `echo '[{"type":"system"},{"type":"result","structured_output":{"success":true}}]'`)

	var traced []string
	c := &Claude{BinaryPath: binary, Model: "opus", Trace: func(s string) { traced = append(traced, s) }}
	progress := &countingIndicator{}

	out, err := c.Invoke(context.Background(), Request{
		Label:       "execute",
		Instruction: "do the thing",
		Schema:      types.ExecutionResultSchema(),
		Progress:    progress,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(out))
	assert.Equal(t, 1, progress.starts)
	assert.Equal(t, 1, progress.stops)
	require.Len(t, traced, 2)
	assert.Contains(t, traced[0], "(execute)")

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := strings.Split(strings.TrimSuffix(string(recorded), "\n"), "\n")
	assert.Equal(t, []string{
		"--dangerously-skip-permissions", "-p", "--verbose",
		"--output-format", "json",
		"--json-schema", string(types.ExecutionResultSchema()),
		"--model", "opus",
		"do the thing",
	}, args)
}

func TestClaudeInvokeNonZeroExit(t *testing.T) {
	binary, _ := fakeClaude(t, "echo 'rate limited' >&2\nexit 3")
	c := &Claude{BinaryPath: binary}
	progress := &countingIndicator{}

	_, err := c.Invoke(context.Background(), Request{Instruction: "x", Progress: progress})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvocationFailed)

	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, 3, invErr.ExitCode)
	assert.Equal(t, "rate limited\n", invErr.Stderr)
	assert.Equal(t, 1, progress.stops, "indicator must stop on failure")
}

func TestClaudeInvokeTimeout(t *testing.T) {
	binary, _ := fakeClaude(t, "exec sleep 5")
	c := &Claude{BinaryPath: binary}

	start := time.Now()
	_, err := c.Invoke(context.Background(), Request{Instruction: "x", Timeout: 100 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestClaudeInvokeParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "echo 'Something went wrong'"},
		{"no structured output", `echo '[{"type":"result","result":"ok"}]'`},
		{"schema violation", `echo '[{"structured_output":{"success":"yes"}}]'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binary, _ := fakeClaude(t, tt.body)
			c := &Claude{BinaryPath: binary}
			_, err := c.Invoke(context.Background(), Request{Instruction: "x", Schema: types.ExecutionResultSchema()})
			assert.ErrorIs(t, err, ErrOutputParse)
		})
	}
}

func TestClaudeInvokeMissingBinary(t *testing.T) {
	c := &Claude{BinaryPath: filepath.Join(t.TempDir(), "no-such-claude")}
	_, err := c.Invoke(context.Background(), Request{Instruction: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvocationFailed)
	assert.Contains(t, err.Error(), "claude not found")
}

func TestClaudeInvokeCanceled(t *testing.T) {
	binary, _ := fakeClaude(t, "exec sleep 5")
	c := &Claude{BinaryPath: binary}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := c.Invoke(ctx, Request{Instruction: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestBuildArgsKeepAwake(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/caffeinate", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	tests := []struct {
		name      string
		keepAwake bool
		lookPath  func(string) (string, error)
		wantHead  []string
	}{
		{"wrapped", true, found, []string{"/usr/bin/caffeinate", "-dimsu", "claude"}},
		{"caffeinate missing", true, missing, []string{"claude", "--dangerously-skip-permissions"}},
		{"disabled", false, found, []string{"claude", "--dangerously-skip-permissions"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claude{BinaryPath: "claude", KeepAwake: tt.keepAwake, lookPath: tt.lookPath}
			args := c.buildArgs(Request{Instruction: "go"})
			assert.Equal(t, tt.wantHead, args[:len(tt.wantHead)])
			assert.Equal(t, "go", args[len(args)-1])
			assert.NotContains(t, args, "--json-schema")
			assert.NotContains(t, args, "--model")
		})
	}
}
