package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	timerInterval = 500 * time.Millisecond
	timerJoinWait = time.Second
	fallbackWidth = 80
)

// Timer renders a live "phase | total of budget" readout on the terminal's
// last row while a long call is running. It is purely cosmetic.
type Timer struct {
	out      io.Writer
	fd       int
	theme    *Theme
	runStart time.Time
	budget   time.Duration
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	stop      chan struct{}
	done      chan struct{}
	regionSet bool
}

// NewTimer creates a timer that writes through the display's output.
// runStart is the start of the whole run, budget its wall-clock limit.
func (d *Display) NewTimer(runStart time.Time, budget time.Duration) *Timer {
	fd := -1
	if f, ok := d.out.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Timer{
		out:      d.out,
		fd:       fd,
		theme:    d.theme,
		runStart: runStart,
		budget:   budget,
		interval: timerInterval,
		now:      time.Now,
	}
}

// IsTerminal reports whether the display writes to an interactive terminal
func (d *Display) IsTerminal() bool {
	f, ok := d.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start reserves the last terminal row and begins rendering.
// Calling Start on a running timer is a no-op.
func (t *Timer) Start() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return
	}

	phaseStart := t.now()

	// Shrink the scroll region by one row so output never scrolls into the timer line
	if _, height, err := term.GetSize(t.fd); err == nil && height > 1 {
		fmt.Fprintf(t.out, "\033[1;%dr\033[%d;1H", height-1, height-1)
		t.regionSet = true
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.loop(phaseStart, t.stop, t.done)
}

// Stop halts rendering and restores normal scrolling. It is safe to call
// more than once and on a timer that never started.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	stop, done, regionSet := t.stop, t.done, t.regionSet
	t.stop, t.done, t.regionSet = nil, nil, false
	t.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(timerJoinWait):
	}

	if regionSet {
		if _, height, err := term.GetSize(t.fd); err == nil {
			// Reset scroll region, clear the timer row, park the cursor above it
			fmt.Fprintf(t.out, "\033[r\033[%d;1H\033[K\033[%d;1H\n", height, height-1)
			return
		}
		fmt.Fprint(t.out, "\033[r")
	}
	fmt.Fprintf(t.out, "\r%s\r\n", strings.Repeat(" ", fallbackWidth))
}

func (t *Timer) loop(phaseStart time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		t.render(phaseStart)
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (t *Timer) render(phaseStart time.Time) {
	text := t.Line(phaseStart, t.now())

	width, height, err := term.GetSize(t.fd)
	if err != nil {
		// Terminal size unavailable: overwrite the current line instead
		fmt.Fprintf(t.out, "\r%s", t.theme.Timer(text))
		return
	}

	n := utf8.RuneCountInString(text)
	switch {
	case n < width:
		text += strings.Repeat(" ", width-n)
	case n > width:
		text = string([]rune(text)[:width])
	}
	fmt.Fprintf(t.out, "\033[%d;1H\033[K%s", height, t.theme.Timer(text))
}

// Line formats the readout for a phase that started at phaseStart
func (t *Timer) Line(phaseStart, now time.Time) string {
	return fmt.Sprintf("%s Phase: %s | Total: %s of %s",
		SymbolTimer,
		FormatClock(now.Sub(phaseStart)),
		FormatClock(now.Sub(t.runStart)),
		FormatClock(t.budget))
}

// FormatClock formats a duration as HH:MM:SS, truncating sub-second parts
func FormatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
