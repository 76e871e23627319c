package osauto

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func newTestMacOS(runner Runner) (*MacOS, *[]string) {
	var copied []string
	m := NewMacOS(runner, "iTerm", 200*time.Millisecond)
	m.writeClipboard = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	return m, &copied
}

func TestOpenApp(t *testing.T) {
	r := &recordingRunner{}
	m, _ := newTestMacOS(r)

	require.NoError(t, m.OpenApp(context.Background(), "Typora"))
	assert.Equal(t, [][]string{{"open", "-a", "Typora"}}, r.calls)
}

func TestOpenPath(t *testing.T) {
	tests := []struct {
		name string
		app  string
		want []string
	}{
		{"with app", "Typora", []string{"open", "-a", "Typora", "/tmp/blog.md"}},
		{"default app", "", []string{"open", "/tmp/blog.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingRunner{}
			m, _ := newTestMacOS(r)
			require.NoError(t, m.OpenPath(context.Background(), "/tmp/blog.md", tt.app))
			assert.Equal(t, [][]string{tt.want}, r.calls)
		})
	}
}

func TestKeyCode(t *testing.T) {
	r := &recordingRunner{}
	m, _ := newTestMacOS(r)

	require.NoError(t, m.KeyCode(context.Background(), KeyCodeDown, false))
	require.NoError(t, m.KeyCode(context.Background(), KeyCodeUp, true))

	assert.Equal(t, [][]string{
		{"osascript", "-e", `tell application "System Events" to key code 125`},
		{"osascript", "-e", `tell application "System Events" to key code 126 using command down`},
	}, r.calls)
}

func TestSendToTerminal(t *testing.T) {
	r := &recordingRunner{}
	m, copied := newTestMacOS(r)

	require.NoError(t, m.SendToTerminal(context.Background(), "Write tests"))
	assert.Equal(t, []string{"Write tests"}, *copied)
	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"osascript",
		"-e", `tell application "iTerm" to activate`,
		"-e", `tell application "System Events" to keystroke "v" using command down`,
		"-e", "delay 0.2",
		"-e", `tell application "System Events" to keystroke return`,
	}, r.calls[0])
}

func TestSendToTerminalClipboardFailure(t *testing.T) {
	r := &recordingRunner{}
	m, _ := newTestMacOS(r)
	m.writeClipboard = func(string) error { return errors.New("no pasteboard") }

	err := m.SendToTerminal(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clipboard")
	assert.Empty(t, r.calls, "nothing is pasted when the copy failed")
}

func TestPlaySound(t *testing.T) {
	r := &recordingRunner{}
	m, _ := newTestMacOS(r)
	require.NoError(t, m.PlaySound(context.Background(), "/System/Library/Sounds/Glass.aiff"))
	assert.Equal(t, [][]string{{"afplay", "/System/Library/Sounds/Glass.aiff"}}, r.calls)
}

func TestAppleScriptString(t *testing.T) {
	assert.Equal(t, `"Terminal"`, appleScriptString("Terminal"))
	assert.Equal(t, `"a \"b\" \\c"`, appleScriptString(`a "b" \c`))
}

func TestNewMacOSDefaultsTerminal(t *testing.T) {
	m := NewMacOS(&recordingRunner{}, "", 0)
	assert.Equal(t, "Terminal", m.terminalApp)
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	var traced []string
	r := ExecRunner{Trace: func(s string) { traced = append(traced, s) }}

	require.NoError(t, r.Run(context.Background(), "sh", "-c", "exit 0"))
	assert.Equal(t, []string{"sh -c 'exit 0'"}, traced)

	err := r.Run(context.Background(), "sh", "-c", "echo nope >&2; exit 4")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "sh failed: exit status 4"))
	assert.Contains(t, err.Error(), "nope")
}
