package osauto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// Key codes understood by System Events
const (
	KeyCodeDown = 125
	KeyCodeUp   = 126
)

// Automator performs the desktop actions voice commands map to
type Automator interface {
	OpenApp(ctx context.Context, app string) error
	OpenPath(ctx context.Context, path, app string) error
	KeyCode(ctx context.Context, code int, withCommand bool) error
	SendToTerminal(ctx context.Context, text string) error
}

// MacOS implements Automator with open, osascript and the pasteboard
type MacOS struct {
	runner      Runner
	terminalApp string
	pasteDelay  time.Duration

	writeClipboard func(string) error
}

// NewMacOS creates a macOS automator. terminalApp is the application that
// receives relayed prompts; pasteDelay separates the paste from the return key.
func NewMacOS(runner Runner, terminalApp string, pasteDelay time.Duration) *MacOS {
	if terminalApp == "" {
		terminalApp = "Terminal"
	}
	return &MacOS{
		runner:         runner,
		terminalApp:    terminalApp,
		pasteDelay:     pasteDelay,
		writeClipboard: clipboard.WriteAll,
	}
}

// OpenApp launches or focuses an application by name
func (m *MacOS) OpenApp(ctx context.Context, app string) error {
	return m.runner.Run(ctx, "open", "-a", app)
}

// OpenPath opens a file, in app when one is given
func (m *MacOS) OpenPath(ctx context.Context, path, app string) error {
	if app != "" {
		return m.runner.Run(ctx, "open", "-a", app, path)
	}
	return m.runner.Run(ctx, "open", path)
}

// KeyCode sends a single key press to the frontmost application
func (m *MacOS) KeyCode(ctx context.Context, code int, withCommand bool) error {
	script := fmt.Sprintf(`tell application "System Events" to key code %d`, code)
	if withCommand {
		script += " using command down"
	}
	return m.runner.Run(ctx, "osascript", "-e", script)
}

// SendToTerminal copies text to the clipboard, pastes it into the terminal
// application and presses return.
func (m *MacOS) SendToTerminal(ctx context.Context, text string) error {
	if err := m.writeClipboard(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	return m.runner.Run(ctx, "osascript",
		"-e", fmt.Sprintf("tell application %s to activate", appleScriptString(m.terminalApp)),
		"-e", `tell application "System Events" to keystroke "v" using command down`,
		"-e", "delay "+strconv.FormatFloat(m.pasteDelay.Seconds(), 'f', -1, 64),
		"-e", `tell application "System Events" to keystroke return`,
	)
}

// PlaySound plays an audio file with afplay
func (m *MacOS) PlaySound(ctx context.Context, path string) error {
	return m.runner.Run(ctx, "afplay", path)
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
