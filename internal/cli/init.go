package cli

import (
	"os"

	"github.com/daydemir/phaser/internal/workspace"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a phaser workspace",
	Long: `Initialize a phaser workspace in the current directory.

Creates:
  .phaser.yaml       Configuration settings
  docs/proposed/     Planning documents waiting to be implemented
  docs/completed/    Planning documents that were fully implemented
  .phaser/prompts/   Customizable prompt templates`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		fs := afero.NewOsFs()
		ws := workspace.New(fs, cfg.Runner.ProposedDir, cfg.Runner.CompletedDir)
		written, err := workspace.Init(fs, cwd, ws, initForce)
		if err != nil {
			return err
		}

		d := newDisplay()
		for _, path := range written {
			d.Status(d.Theme().Success("+"), path)
		}
		d.Success("Workspace initialized")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing workspace")
	rootCmd.AddCommand(initCmd)
}
