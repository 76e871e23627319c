// Package command maps parsed voice commands onto desktop automation.
package command

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/osauto"
	"github.com/daydemir/phaser/internal/types"
	"github.com/daydemir/phaser/internal/utils"
)

// DefaultScrollAmount is the number of arrow presses for up/down without an amount
const DefaultScrollAmount = 5

type handlerFunc func(ctx context.Context, args map[string]any) error

// Dispatcher routes commands to their handlers. Failures are logged and
// returned per command; one failing command never stops the next.
type Dispatcher struct {
	automator     osauto.Automator
	display       *display.Display
	defaultScroll int
	handlers      map[string]handlerFunc
}

// NewDispatcher creates a dispatcher with the openApp, openFile and scroll handlers
func NewDispatcher(automator osauto.Automator, d *display.Display, defaultScroll int) *Dispatcher {
	if defaultScroll <= 0 {
		defaultScroll = DefaultScrollAmount
	}
	disp := &Dispatcher{
		automator:     automator,
		display:       d,
		defaultScroll: defaultScroll,
	}
	disp.handlers = map[string]handlerFunc{
		types.CommandOpenApp:  disp.openApp,
		types.CommandOpenFile: disp.openFile,
		types.CommandScroll:   disp.scroll,
	}
	return disp
}

// Execute runs a single command
func (d *Dispatcher) Execute(ctx context.Context, cmd types.Command) error {
	handler, ok := d.handlers[cmd.Type]
	if !ok {
		err := failf(ErrUnknownCommand, "Unknown command type: %s", cmd.Type)
		d.display.Warning(err.Error())
		return err
	}

	if err := handler(ctx, cmd.Args); err != nil {
		d.display.Error(err.Error())
		return err
	}
	return nil
}

// ExecuteAll runs every command in order and returns how many succeeded
func (d *Dispatcher) ExecuteAll(ctx context.Context, cmds []types.Command) int {
	succeeded := 0
	for _, cmd := range cmds {
		d.display.Log("Executing command: %s", cmd.Type)
		if err := d.Execute(ctx, cmd); err == nil {
			succeeded++
		}
	}
	return succeeded
}

func (d *Dispatcher) openApp(ctx context.Context, args map[string]any) error {
	app, err := stringArg(args, "app")
	if err != nil {
		return err
	}
	if app == "" {
		return failf(ErrInvalidArgument, "Missing 'app' argument for openApp command")
	}

	d.display.Log("Opening %s...", app)
	if err := d.automator.OpenApp(ctx, app); err != nil {
		return fmt.Errorf("failed to open %s: %w", app, err)
	}
	return nil
}

func (d *Dispatcher) openFile(ctx context.Context, args map[string]any) error {
	path, err := stringArg(args, "path")
	if err != nil {
		return err
	}
	app, err := stringArg(args, "app")
	if err != nil {
		return err
	}
	if path == "" {
		return failf(ErrInvalidArgument, "Missing 'path' argument for openFile command")
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}

	d.display.Log("Opening %s...", resolved)
	if err := d.automator.OpenPath(ctx, resolved, app); err != nil {
		return fmt.Errorf("failed to open %s: %w", resolved, err)
	}
	return nil
}

// resolvePath expands ~ and glob patterns (first match wins) and checks the result exists
func resolvePath(path string) (string, error) {
	expanded := utils.ExpandHome(path)

	if utils.HasGlobMeta(expanded) {
		matches, err := doublestar.FilepathGlob(expanded)
		if err != nil {
			return "", failf(ErrInvalidArgument, "Invalid file pattern %s: %v", path, err)
		}
		if len(matches) == 0 {
			return "", failf(ErrResourceMissing, "No files found matching: %s", path)
		}
		expanded = matches[0]
	}

	if _, err := os.Stat(expanded); err != nil {
		return "", failf(ErrResourceMissing, "File not found: %s", expanded)
	}
	return expanded, nil
}

func (d *Dispatcher) scroll(ctx context.Context, args map[string]any) error {
	raw, err := stringArg(args, "direction")
	if err != nil {
		return err
	}
	direction := types.ScrollDirection(raw)
	if direction == "" {
		direction = types.ScrollDown
	}
	if !direction.IsValid() {
		return failf(ErrInvalidArgument, "Unknown scroll direction: %s", raw)
	}

	// Top and bottom are a single Cmd+arrow; amount does not apply
	if direction.IsJump() {
		d.display.Log("Scrolling %s...", direction)
		code := osauto.KeyCodeUp
		if direction == types.ScrollBottom {
			code = osauto.KeyCodeDown
		}
		if err := d.automator.KeyCode(ctx, code, true); err != nil {
			return fmt.Errorf("failed to scroll %s: %w", direction, err)
		}
		return nil
	}

	amount, err := intArg(args, "amount", d.defaultScroll)
	if err != nil {
		return err
	}
	if amount < 0 {
		return failf(ErrInvalidArgument, "Scroll amount must not be negative, got %d", amount)
	}

	d.display.Log("Scrolling %s...", direction)
	code := osauto.KeyCodeDown
	if direction == types.ScrollUp {
		code = osauto.KeyCodeUp
	}
	for i := 0; i < amount; i++ {
		if err := d.automator.KeyCode(ctx, code, false); err != nil {
			return fmt.Errorf("failed to scroll %s: %w", direction, err)
		}
	}
	return nil
}
