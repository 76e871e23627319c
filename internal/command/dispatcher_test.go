package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAutomator struct {
	calls []string
	err   error
}

func (f *fakeAutomator) OpenApp(_ context.Context, app string) error {
	f.calls = append(f.calls, "openApp "+app)
	return f.err
}

func (f *fakeAutomator) OpenPath(_ context.Context, path, app string) error {
	f.calls = append(f.calls, fmt.Sprintf("openPath %s [%s]", path, app))
	return f.err
}

func (f *fakeAutomator) KeyCode(_ context.Context, code int, withCommand bool) error {
	f.calls = append(f.calls, fmt.Sprintf("key %d cmd=%v", code, withCommand))
	return f.err
}

func (f *fakeAutomator) SendToTerminal(_ context.Context, text string) error {
	f.calls = append(f.calls, "send "+text)
	return f.err
}

func newTestDispatcher() (*Dispatcher, *fakeAutomator, *bytes.Buffer) {
	var out bytes.Buffer
	auto := &fakeAutomator{}
	return NewDispatcher(auto, display.NewPlain(&out), 0), auto, &out
}

func TestScroll(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{
			name: "down three",
			args: map[string]any{"direction": "down", "amount": float64(3)},
			want: []string{"key 125 cmd=false", "key 125 cmd=false", "key 125 cmd=false"},
		},
		{
			name: "up truncates fractional amount",
			args: map[string]any{"direction": "up", "amount": 2.9},
			want: []string{"key 126 cmd=false", "key 126 cmd=false"},
		},
		{
			name: "amount as string",
			args: map[string]any{"direction": "up", "amount": "1"},
			want: []string{"key 126 cmd=false"},
		},
		{
			name: "amount as json.Number",
			args: map[string]any{"direction": "down", "amount": json.Number("2")},
			want: []string{"key 125 cmd=false", "key 125 cmd=false"},
		},
		{
			name: "defaults to five down",
			args: map[string]any{},
			want: []string{"key 125 cmd=false", "key 125 cmd=false", "key 125 cmd=false", "key 125 cmd=false", "key 125 cmd=false"},
		},
		{
			name: "top ignores amount",
			args: map[string]any{"direction": "top", "amount": float64(40)},
			want: []string{"key 126 cmd=true"},
		},
		{
			name: "bottom",
			args: map[string]any{"direction": "bottom"},
			want: []string{"key 125 cmd=true"},
		},
		{
			name: "zero amount sends nothing",
			args: map[string]any{"direction": "down", "amount": float64(0)},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, auto, _ := newTestDispatcher()
			err := d.Execute(context.Background(), types.Command{Type: types.CommandScroll, Args: tt.args})
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, auto.calls); diff != "" {
				t.Errorf("key events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScrollInvalid(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"unknown direction", map[string]any{"direction": "sideways"}},
		{"non-numeric amount", map[string]any{"direction": "down", "amount": "lots"}},
		{"negative amount", map[string]any{"direction": "down", "amount": float64(-2)}},
		{"amount too large", map[string]any{"direction": "down", "amount": 1e20}},
		{"amount too small", map[string]any{"direction": "up", "amount": -1e20}},
		{"json amount too large", map[string]any{"direction": "down", "amount": json.Number("1e20")}},
		{"direction not a string", map[string]any{"direction": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, auto, _ := newTestDispatcher()
			err := d.Execute(context.Background(), types.Command{Type: types.CommandScroll, Args: tt.args})
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Empty(t, auto.calls)
		})
	}
}

func TestScrollHugeAmountReportsRange(t *testing.T) {
	d, _, out := newTestDispatcher()
	err := d.Execute(context.Background(), types.Command{Type: types.CommandScroll, Args: map[string]any{"direction": "down", "amount": 1e20}})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "out of range")
	assert.NotContains(t, out.String(), "must not be negative")
}

func TestOpenApp(t *testing.T) {
	d, auto, out := newTestDispatcher()

	require.NoError(t, d.Execute(context.Background(), types.Command{
		Type: types.CommandOpenApp,
		Args: map[string]any{"app": "Typora"},
	}))
	assert.Equal(t, []string{"openApp Typora"}, auto.calls)
	assert.Contains(t, out.String(), "Opening Typora...")
}

func TestOpenAppMissingArgument(t *testing.T) {
	for _, args := range []map[string]any{nil, {}, {"app": ""}, {"app": nil}} {
		d, auto, out := newTestDispatcher()
		err := d.Execute(context.Background(), types.Command{Type: types.CommandOpenApp, Args: args})
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Empty(t, auto.calls)
		assert.Contains(t, out.String(), "Missing 'app' argument for openApp command")
	}
}

func TestOpenAppAutomationFailure(t *testing.T) {
	d, auto, _ := newTestDispatcher()
	auto.err = errors.New("open failed: exit status 1")

	err := d.Execute(context.Background(), types.Command{Type: types.CommandOpenApp, Args: map[string]any{"app": "Nope"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, auto.err)
}

func TestOpenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	drafts := filepath.Join(home, "Desktop", "doc-drafts", "2026-01")
	require.NoError(t, os.MkdirAll(drafts, 0o755))
	blog := filepath.Join(drafts, "blog.md")
	require.NoError(t, os.WriteFile(blog, []byte("# draft"), 0o644))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"glob in the middle", map[string]any{"path": "~/Desktop/doc-drafts/*/blog.md", "app": "Typora"}, "openPath " + blog + " [Typora]"},
		{"double star", map[string]any{"path": "~/Desktop/**/blog.md"}, "openPath " + blog + " []"},
		{"plain path", map[string]any{"path": blog}, "openPath " + blog + " []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, auto, _ := newTestDispatcher()
			require.NoError(t, d.Execute(context.Background(), types.Command{Type: types.CommandOpenFile, Args: tt.args}))
			assert.Equal(t, []string{tt.want}, auto.calls)
		})
	}
}

func TestOpenFileMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Run("no glob match", func(t *testing.T) {
		d, auto, out := newTestDispatcher()
		err := d.Execute(context.Background(), types.Command{
			Type: types.CommandOpenFile,
			Args: map[string]any{"path": "~/nonexistent/*.md"},
		})
		assert.ErrorIs(t, err, ErrResourceMissing)
		assert.Empty(t, auto.calls)
		assert.Contains(t, out.String(), "No files found matching: ~/nonexistent/*.md")
	})

	t.Run("file not found", func(t *testing.T) {
		d, auto, out := newTestDispatcher()
		err := d.Execute(context.Background(), types.Command{
			Type: types.CommandOpenFile,
			Args: map[string]any{"path": "~/missing.md"},
		})
		assert.ErrorIs(t, err, ErrResourceMissing)
		assert.Empty(t, auto.calls)
		assert.Contains(t, out.String(), "File not found: "+filepath.Join(home, "missing.md"))
	})

	t.Run("missing path argument", func(t *testing.T) {
		d, _, _ := newTestDispatcher()
		err := d.Execute(context.Background(), types.Command{Type: types.CommandOpenFile, Args: map[string]any{"app": "Typora"}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestUnknownCommand(t *testing.T) {
	d, auto, out := newTestDispatcher()
	err := d.Execute(context.Background(), types.Command{Type: "launchRocket"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Empty(t, auto.calls)
	assert.Contains(t, out.String(), "Unknown command type: launchRocket")
}

func TestExecuteAllContinuesPastFailures(t *testing.T) {
	d, auto, _ := newTestDispatcher()

	n := d.ExecuteAll(context.Background(), []types.Command{
		{Type: types.CommandOpenApp, Args: map[string]any{"app": "Typora"}},
		{Type: "bogus"},
		{Type: types.CommandScroll, Args: map[string]any{"direction": "bottom"}},
		{Type: types.CommandOpenApp},
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"openApp Typora", "key 125 cmd=true"}, auto.calls)
}

func TestRegistryCoversAllKinds(t *testing.T) {
	d, _, _ := newTestDispatcher()
	for _, kind := range types.AllCommandKinds() {
		_, ok := d.handlers[kind]
		assert.True(t, ok, kind)
	}
}

func TestExecuteAllMissingFileThenScroll(t *testing.T) {
	d, auto, out := newTestDispatcher()

	n := d.ExecuteAll(context.Background(), []types.Command{
		{Type: types.CommandOpenFile, Args: map[string]any{"path": "/no/such/file"}},
		{Type: types.CommandScroll, Args: map[string]any{"direction": "top"}},
	})

	assert.Equal(t, 1, n)
	assert.Contains(t, out.String(), "File not found: /no/such/file")
	assert.Equal(t, []string{"key 126 cmd=true"}, auto.calls)
}
