package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/daydemir/phaser/internal/prompts"
	"github.com/spf13/afero"
)

// Init creates .phaser.yaml, the planning-doc directories and editable
// copies of the prompt templates under dir. It returns the files it wrote.
func Init(fs afero.Fs, dir string, ws *Workspace, force bool) ([]string, error) {
	configPath := filepath.Join(dir, ConfigFile)

	// Check if workspace already exists
	if exists, _ := afero.Exists(fs, configPath); exists && !force {
		return nil, ErrWorkspaceExists
	}

	// Create directory structure
	dirs := []string{
		filepath.Join(dir, ws.ProposedDir),
		filepath.Join(dir, ws.CompletedDir),
		filepath.Join(dir, PhaserDir, "prompts"),
	}
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	written := []string{configPath}
	if err := writeFile(fs, configPath, fmt.Sprintf(defaultConfig, ws.ProposedDir, ws.CompletedDir)); err != nil {
		return nil, err
	}

	// Copy prompt templates
	for _, name := range []string{prompts.Status, prompts.Execute, prompts.Voice} {
		content, err := prompts.Get(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get embedded prompt %s: %w", name, err)
		}
		path := filepath.Join(dir, PhaserDir, "prompts", name+".md")
		if err := writeFile(fs, path, content); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	return written, nil
}

func writeFile(fs afero.Fs, path, content string) error {
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

const defaultConfig = `# phaser configuration
claude:
  binary: claude           # Path to Claude Code CLI
  model: ""                # Empty uses the CLI default
  keep_awake: true         # Wrap calls in caffeinate -dimsu when available
runner:
  max_minutes: 90
  throttle: 2s
  proposed_dir: %s
  completed_dir: %s
  recent_limit: 5
  timer: true
  completion_sound: /System/Library/Sounds/Glass.aiff
voice:
  file: ~/Dropbox/ai.csv
  interval: 1s
  parse_timeout: 30s
  context_size: 10
  terminal_app: Terminal
  paste_delay: 200ms
  default_scroll: 5
`
