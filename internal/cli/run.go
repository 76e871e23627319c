package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daydemir/phaser/internal/config"
	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/executor"
	"github.com/daydemir/phaser/internal/llm"
	"github.com/daydemir/phaser/internal/osauto"
	"github.com/daydemir/phaser/internal/utils"
	"github.com/daydemir/phaser/internal/workspace"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [planning-doc] [max-minutes]",
	Short: "Implement a planning document phase by phase",
	Long: `Implement a planning document phase by phase using Claude Code.

Without a planning document, the most recently modified docs in the proposed
directory are listed for selection. A selected doc that ends fully complete is
moved to the completed directory and the move is committed with git.

Examples:
  phaser run
  phaser run docs/proposed/search.md
  phaser run docs/proposed/search.md 45`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPhases,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPhases(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d := newDisplay()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	fs := afero.NewOsFs()
	root := workspace.Find(fs, cwd)
	ws := workspace.New(fs, workspacePath(root, cfg.Runner.ProposedDir), workspacePath(root, cfg.Runner.CompletedDir))
	ws.Root = root

	maxRuntime := cfg.Runner.MaxRuntime()
	if len(args) == 2 {
		maxRuntime, err = parseMaxMinutes(args[1])
		if err != nil {
			return err
		}
	}

	// Interactive mode archives the doc once every phase is complete
	interactive := len(args) == 0

	var doc string
	if interactive {
		docs, err := ws.RecentDocs(cfg.Runner.RecentLimit)
		if err != nil {
			return err
		}
		if doc, err = ws.Select(os.Stdin, d, docs); err != nil {
			return err
		}
	} else if doc, err = ws.Resolve(args[0]); err != nil {
		return err
	}

	if err := utils.CheckClaudeInstalled(cfg.Claude.Binary); err != nil {
		return err
	}

	claude := llm.NewClaude(cfg.Claude.Binary)
	claude.Model = cfg.Claude.Model
	claude.KeepAwake = cfg.Claude.KeepAwake
	claude.WorkDir = root
	claude.Trace = d.Debug

	d.Header(doc, maxRuntime)

	runner := executor.New(&executor.Config{
		MaxRuntime: maxRuntime,
		Throttle:   cfg.Runner.Throttle,
		ShowTimer:  cfg.Runner.Timer && d.IsTerminal(),
		WorkDir:    root,
	}, claude, d)

	summary, err := runner.Run(ctx, doc)
	if err != nil {
		return reported(err)
	}
	d.Debug(fmt.Sprintf("run %s finished: %s after %d steps", summary.ID, summary.Outcome, summary.Steps))

	if summary.Outcome != executor.OutcomeDone {
		return nil
	}

	if interactive {
		archive(ctx, d, ws, root, doc)
	}
	playCompletionSound(ctx, d, cfg)
	return nil
}

// archive moves a completed doc and commits the move. Failures are reported
// but do not fail the run.
func archive(ctx context.Context, d *display.Display, ws *workspace.Workspace, root, doc string) {
	dest, err := ws.Archive(doc)
	if err != nil {
		d.Warning(fmt.Sprintf("Failed to move spec: %v", err))
		return
	}
	d.Success("Moved spec to " + dest)

	git := osauto.ExecRunner{Dir: root, Trace: d.Debug}
	if err := ws.CommitMove(ctx, git, doc, dest); err != nil {
		d.Warning(fmt.Sprintf("Failed to commit spec move: %v", err))
		return
	}
	d.Success("Committed spec move")
}

func playCompletionSound(ctx context.Context, d *display.Display, cfg *config.Config) {
	sound := cfg.Runner.CompletionSound
	if sound == "" || !utils.HasBinary("afplay") {
		return
	}
	mac := osauto.NewMacOS(osauto.ExecRunner{Trace: d.Debug}, cfg.Voice.TerminalApp, cfg.Voice.PasteDelay)
	for i := 0; i < 2; i++ {
		if err := mac.PlaySound(ctx, sound); err != nil {
			d.Debug(fmt.Sprintf("completion sound: %v", err))
			return
		}
	}
}

// parseMaxMinutes parses the optional max-minutes argument
func parseMaxMinutes(arg string) (time.Duration, error) {
	minutes, err := strconv.Atoi(arg)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("invalid max-minutes %q: must be a positive whole number", arg)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func workspacePath(root, dir string) string {
	dir = utils.ExpandHome(dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
