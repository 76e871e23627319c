package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ResolveBinaryPath finds a binary, checking common locations
func ResolveBinaryPath(binaryPath string) string {
	// If it's an absolute path, use it directly
	if filepath.IsAbs(binaryPath) {
		return binaryPath
	}

	// Check if it's in PATH
	if path, err := exec.LookPath(binaryPath); err == nil {
		return path
	}

	// Handle tilde prefix
	if strings.HasPrefix(binaryPath, "~") {
		return ExpandHome(binaryPath)
	}

	// Check common locations
	home, err := os.UserHomeDir()
	if err == nil {
		name := filepath.Base(binaryPath)
		commonPaths := []string{
			filepath.Join(home, ".claude", "local", name),
			filepath.Join("/usr/local/bin", name),
			filepath.Join("/opt/homebrew/bin", name),
		}

		for _, p := range commonPaths {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	// Return original, will fail with helpful error later
	return binaryPath
}

// HasBinary reports whether name resolves to an executable on PATH
func HasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckClaudeInstalled verifies the configured Claude Code CLI can be found
func CheckClaudeInstalled(binaryPath string) error {
	resolved := ResolveBinaryPath(binaryPath)
	if filepath.IsAbs(resolved) {
		if _, err := os.Stat(resolved); err == nil {
			return nil
		}
	}
	if HasBinary(resolved) {
		return nil
	}
	return ClaudeNotFoundError()
}

// IsNotFound reports whether err came from starting a binary that does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// ClaudeNotFoundError returns a helpful error message when Claude is not found
func ClaudeNotFoundError() error {
	return fmt.Errorf(`claude not found in PATH

To fix, add to your ~/.zshrc or ~/.bashrc:
  export PATH="$HOME/.claude/local:$PATH"

Then restart your terminal, or run:
  source ~/.zshrc

Alternatively, set the full path in .phaser.yaml:
  claude:
    binary: /path/to/claude`)
}
