// Package display provides unified output formatting for phaser and voicewatch.
// It visually separates orchestration messages from the assistant's own output
// and owns the single terminal line used by the live timer.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/daydemir/phaser/internal/types"
	"golang.org/x/term"
)

// Display handles all CLI output with visual hierarchy
type Display struct {
	mu        sync.Mutex
	out       io.Writer
	theme     *Theme
	termWidth int
	noColor   bool
	verbose   bool
}

// NewWithOptions creates a Display with configuration.
// Colors are also disabled when stdout is not a terminal.
func NewWithOptions(noColor bool) *Display {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		noColor = true
	}
	d := &Display{
		out:       os.Stdout,
		termWidth: getTerminalWidth(),
		noColor:   noColor,
	}
	if noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

// NewPlain creates a colorless Display writing to w at a fixed width
func NewPlain(w io.Writer) *Display {
	return &Display{
		out:       w,
		theme:     NoColorTheme(),
		termWidth: 80,
		noColor:   true,
	}
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120 // Cap at 120 for readability
	}
	return width
}

// SetVerbose enables Debug output
func (d *Display) SetVerbose(verbose bool) {
	d.verbose = verbose
}

// Theme returns the current theme for external use
func (d *Display) Theme() *Theme {
	return d.theme
}

func (d *Display) println(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, s)
}

func timestamp() string {
	return time.Now().Format("[15:04:05]")
}

// Box prints a boxed message with a title
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := len(title) + 4 // "─ TITLE "
	remainingWidth := width - titleLen
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	// Top border: ┌─ TITLE ─────────────────────────┐
	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	d.println(d.theme.Border(topLine))

	// Content lines: │ text                            │
	for _, line := range lines {
		paddedLine := d.padRight(line, width-2)
		d.println(d.theme.Border(BoxVertical) + " " + d.theme.Text(paddedLine) + " " + d.theme.Border(BoxVertical))
	}

	// Bottom border: └─────────────────────────────────┘
	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	d.println(d.theme.Border(bottomLine))
}

// Status prints a single-line timestamped status message
func (d *Display) Status(symbol, message string) {
	d.statusLine(symbol, d.theme.Text(message))
}

func (d *Display) statusLine(symbol, styled string) {
	d.println(fmt.Sprintf("%s %s %s", d.theme.Dim(timestamp()), symbol, styled))
}

// Success prints a success message with green checkmark
func (d *Display) Success(message string) {
	d.statusLine(d.theme.Success(SymbolSuccess), d.theme.Success(message))
}

// Error prints an error message with red X
func (d *Display) Error(message string) {
	d.statusLine(d.theme.Error(SymbolError), d.theme.Error(message))
}

// Warning prints a warning message with yellow triangle
func (d *Display) Warning(message string) {
	d.statusLine(d.theme.Warning(SymbolWarning), d.theme.Warning(message))
}

// Info prints an info message with cyan label
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// Progress prints a cyan progress note such as "Fetching phase information..."
func (d *Display) Progress(message string) {
	d.println(d.theme.Info(message))
}

// Log prints a plain timestamped line
func (d *Display) Log(format string, args ...any) {
	d.println(fmt.Sprintf("%s %s", timestamp(), fmt.Sprintf(format, args...)))
}

// Debug prints a dimmed timestamped line when verbose output is enabled
func (d *Display) Debug(message string) {
	if !d.verbose {
		return
	}
	d.println(d.theme.Dim(fmt.Sprintf("%s %s", timestamp(), message)))
}

// Blank prints an empty line
func (d *Display) Blank() {
	d.println("")
}

// Rule prints a horizontal separator
func (d *Display) Rule() {
	d.println(d.theme.Separator(strings.Repeat(SectionBreak, d.termWidth)))
}

// thinRule prints a light separator between step output and results
func (d *Display) thinRule() {
	d.println(d.theme.Separator(strings.Repeat(StepBreak, d.termWidth)))
}

// Menu prints a heading followed by a numbered list
func (d *Display) Menu(heading string, items []string) {
	d.println(heading)
	d.Blank()
	for i, item := range items {
		d.println(fmt.Sprintf("  %s) %s", d.theme.Warning(fmt.Sprint(i+1)), item))
	}
	d.Blank()
}

// Prompt prints a question without a trailing newline
func (d *Display) Prompt(question string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.out, question)
}

// Header prints the run header for the phase runner
func (d *Display) Header(planningDoc string, maxRuntime time.Duration) {
	d.Box("PHASER",
		"Phased implementation",
		"Planning document: "+planningDoc,
		"Max runtime:       "+FormatClock(maxRuntime))
	d.Blank()
}

// PhaseOverview lists every phase, colored by status
func (d *Display) PhaseOverview(report *types.StatusReport) {
	d.Rule()
	d.println(d.theme.Bold("Implementation Steps"))
	d.Rule()
	d.println(fmt.Sprintf("Total steps: %s", d.theme.Success(fmt.Sprint(len(report.Phases)))))
	d.Blank()

	for i, phase := range report.Phases {
		symbol := SymbolPending
		paint := d.theme.Warning
		switch phase.Status {
		case types.StatusCompleted:
			symbol = SymbolSuccess
			paint = d.theme.Success
		case types.StatusInProgress:
			symbol = SymbolPartial
		}
		d.println(fmt.Sprintf("  %s %s", paint(symbol), paint(fmt.Sprintf("%d: %s", i+1, phase.Description))))
	}

	d.Rule()
	d.Blank()
}

// StepHeader prints the banner before a phase is executed
func (d *Display) StepHeader(index, total int, description string) {
	d.Rule()
	d.println(d.theme.Warning(fmt.Sprintf("Step %d of %d -> %s", index+1, total, description)))
	d.thinRule()
	d.Progress("Running claude...")
	d.Blank()
}

// StepTimes prints the elapsed time of the step just run and of the whole run
func (d *Display) StepTimes(step, total time.Duration) {
	d.println(d.theme.Timer(fmt.Sprintf("%s Step time: %s | Total: %s", SymbolTimer, FormatClock(step), FormatClock(total))))
}

// StepDone prints the result block after a phase completed
func (d *Display) StepDone(index int, step, total time.Duration) {
	d.Blank()
	d.Success(fmt.Sprintf("Step %d completed successfully", index+1))
	d.StepTimes(step, total)
	d.thinRule()
	d.Blank()
}

// StepFailed prints the result block after a phase failed or reported failure
func (d *Display) StepFailed(message string, step, total time.Duration) {
	d.Blank()
	d.Error(message)
	d.StepTimes(step, total)
}

// Summary prints the closing summary of a run
func (d *Display) Summary(complete bool, remaining, steps int, total time.Duration, planningDoc string) {
	d.Blank()
	d.Rule()
	if complete {
		d.println(d.theme.Success(SymbolSuccess + " All steps completed successfully!"))
	} else {
		d.println(d.theme.Warning(fmt.Sprintf("Time limit reached - %d steps may remain", remaining)))
	}
	d.Rule()
	d.println(fmt.Sprintf("Total steps executed: %s", d.theme.Success(fmt.Sprint(steps))))
	d.println(fmt.Sprintf("Total time: %s", d.theme.Info(FormatClock(total))))
	d.println(fmt.Sprintf("Planning document: %s", d.theme.Success(planningDoc)))
	d.Blank()
}

// padRight pads a string to the specified width
func (d *Display) padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Truncate flattens text to one line and cuts it to max runes with an ellipsis
func Truncate(s string, max int) string {
	s = CleanText(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CleanText removes newlines and collapses spaces
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
