// Package voice watches a transcription file and turns newly dictated text
// into desktop commands and prompts for the assistant's terminal session.
package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/types"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// DefaultInterval is the polling interval of the watcher
const DefaultInterval = time.Second

// logPreviewLen caps dictated text echoed in log lines
const logPreviewLen = 120

// InputParser interprets a chunk of dictated text; nil means it could not
type InputParser interface {
	Parse(ctx context.Context, text string) *types.ParsedInput
}

// CommandRunner runs parsed commands in order
type CommandRunner interface {
	ExecuteAll(ctx context.Context, cmds []types.Command) int
}

// Relay pastes text into the assistant's terminal and submits it
type Relay interface {
	SendToTerminal(ctx context.Context, text string) error
}

// Options configures a Watcher
type Options struct {
	Fs         afero.Fs
	Path       string
	Interval   time.Duration
	Session    *Session
	Parser     InputParser
	Dispatcher CommandRunner
	Relay      Relay
	Display    *display.Display
}

// Watcher polls a file and processes whatever was appended since the last read
type Watcher struct {
	fs         afero.Fs
	path       string
	interval   time.Duration
	session    *Session
	parser     InputParser
	dispatcher CommandRunner
	relay      Relay
	display    *display.Display
}

// NewWatcher creates a watcher
func NewWatcher(opts Options) *Watcher {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Session == nil {
		opts.Session = NewSession(DefaultContextSize)
	}
	return &Watcher{
		fs:         opts.Fs,
		path:       opts.Path,
		interval:   opts.Interval,
		session:    opts.Session,
		parser:     opts.Parser,
		dispatcher: opts.Dispatcher,
		relay:      opts.Relay,
		display:    opts.Display,
	}
}

// Session returns the watcher's state
func (w *Watcher) Session() *Session {
	return w.session
}

// ExtractNewContent returns the part of current appended after previous.
// If current does not extend previous the whole of current is new.
func ExtractNewContent(previous, current string) string {
	if strings.HasPrefix(current, previous) {
		return current[len(previous):]
	}
	return current
}

// Watch polls until ctx is cancelled. File system events wake it early
// when they can be subscribed to; otherwise the ticker alone drives it.
func (w *Watcher) Watch(ctx context.Context) error {
	w.display.Log("Watching %s for changes...", w.path)
	w.display.Log("Make sure your Claude Code terminal is the frontmost Terminal window.")
	w.display.Log("Press Ctrl+C to stop.")
	w.display.Blank()
	w.display.Debug("session " + w.session.ID)

	wake, closeWake := w.subscribe()
	defer closeWake()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			break
		}
		w.Tick(ctx)

		select {
		case <-ctx.Done():
		case <-ticker.C:
		case <-wake:
		}
	}

	w.display.Log("Stopping watcher...")
	return nil
}

// Tick reads the file once and processes any new content
func (w *Watcher) Tick(ctx context.Context) {
	w.display.Debug("Checking file...")

	data, err := afero.ReadFile(w.fs, w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.display.Debug("File does not exist")
		} else {
			w.display.Warning("Error reading file: " + err.Error())
		}
		return
	}

	content := string(data)
	w.display.Debug(fmt.Sprintf("File exists, content length: %d", len(content)))

	if content == "" || content == w.session.LastContent {
		w.display.Debug("No change detected")
		return
	}

	delta := ExtractNewContent(w.session.LastContent, content)
	w.display.Log("New text appended: %s", display.Truncate(delta, logPreviewLen))

	w.ProcessInput(ctx, delta)
	w.session.LastContent = content
}

// ProcessInput parses text, runs its commands and relays its prompt.
// Unparseable text is relayed verbatim.
func (w *Watcher) ProcessInput(ctx context.Context, text string) {
	w.display.Log("Parsing input with Claude...")
	parsed := w.parser.Parse(ctx, text)

	// An interrupted parse is not a parse failure; relay nothing
	if ctx.Err() != nil {
		return
	}

	if parsed == nil {
		w.display.Log("Failed to parse input, sending directly to terminal")
		w.send(ctx, text)
		return
	}

	prompt := "none"
	if parsed.HasPrompt() {
		prompt = display.Truncate(parsed.Prompt(), logPreviewLen)
	}
	w.display.Log("Parsed - Prompt: %s, Commands: %d", prompt, len(parsed.Commands))

	w.dispatcher.ExecuteAll(ctx, parsed.Commands)

	if parsed.HasPrompt() {
		w.display.Log("Sending to terminal: %s", display.Truncate(parsed.Prompt(), logPreviewLen))
		w.send(ctx, parsed.Prompt())
	}
}

func (w *Watcher) send(ctx context.Context, text string) {
	if err := w.relay.SendToTerminal(ctx, text); err != nil {
		w.display.Error("Error sending to terminal: " + err.Error())
	}
}

// subscribe watches the file's directory for writes to the file. The
// returned channel is nil when events are unavailable, which never fires.
func (w *Watcher) subscribe() (<-chan struct{}, func()) {
	if _, ok := w.fs.(*afero.OsFs); !ok {
		return nil, func() {}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.display.Debug("file events unavailable, polling only: " + err.Error())
		return nil, func() {}
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		w.display.Debug("file events unavailable, polling only: " + err.Error())
		fw.Close()
		return nil, func() {}
	}

	target := filepath.Clean(w.path)
	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					select {
					case wake <- struct{}{}:
					default:
					}
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return wake, func() {
		fw.Close()
		<-done
	}
}
