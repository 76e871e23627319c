package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daydemir/phaser/internal/config"
	"github.com/daydemir/phaser/internal/display"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "0.1.0"
	cfgFile string
	noColor bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "phaser [planning-doc] [max-minutes]",
	Short: "Drive a planning document to completion with Claude Code",
	Long: `Phaser implements a planning document one phase at a time using Claude Code.

Before every phase it asks Claude for the current phase status, then runs the
next incomplete phase, until every phase is done or the time budget is spent.

Get started:
  phaser init                   Create .phaser.yaml and the docs directories
  phaser                        Pick one of the recent docs in docs/proposed
  phaser docs/proposed/x.md 30  Run a specific doc for at most 30 minutes`,
	Args:          cobra.MaximumNArgs(2),
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runPhases,
}

// Execute runs the phaser command tree
func Execute() error {
	return execute(rootCmd)
}

func execute(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var shown *reportedError
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "\nInterrupted")
	case errors.As(err, &shown):
		// Already printed through the display
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	addGlobalFlags(rootCmd)
	rootCmd.PersistentFlags().String("model", "", "model to use (sonnet, opus, haiku)")
	rootCmd.PersistentFlags().Bool("no-timer", false, "disable the live timer line")
	rootCmd.SetVersionTemplate(fmt.Sprintf("phaser version %s\n", version))
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .phaser.yaml, then ~/.config/phaser/config.yaml)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug output")
}

// reportedError marks an error the display has already shown to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// loadConfig reads the config with the command's flags bound over it
func loadConfig(cmd *cobra.Command) (*viper.Viper, *config.Config, error) {
	v, err := config.New(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if f := cmd.Flags().Lookup("model"); f != nil {
		if err := v.BindPFlag("claude.model", f); err != nil {
			return nil, nil, err
		}
	}
	if f := cmd.Flags().Lookup("no-timer"); f != nil && f.Changed {
		v.Set("runner.timer", false)
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return v, cfg, nil
}

func newDisplay() *display.Display {
	d := display.NewWithOptions(noColor)
	d.SetVerbose(verbose)
	return d
}
