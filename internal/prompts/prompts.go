package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embeddedPrompts embed.FS

// Template names
const (
	Status  = "status"
	Execute = "execute"
	Voice   = "voice"
)

// StatusData fills the phase status query
type StatusData struct {
	PlanningDoc string
}

// ExecuteData fills the single-phase execution instruction
type ExecuteData struct {
	PlanningDoc string
	Number      int // 1-based
	Description string
}

// VoiceData fills the voice parsing instruction
type VoiceData struct {
	Context string
	Latest  string
}

// Get returns the embedded prompt content
func Get(name string) (string, error) {
	// Normalize name
	if !strings.HasSuffix(name, ".md") {
		name = name + ".md"
	}

	content, err := embeddedPrompts.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt %s not found: %w", name, err)
	}
	return string(content), nil
}

// GetForWorkspace returns prompt content, preferring workspaceDir/.phaser/prompts/ over embedded
func GetForWorkspace(workspaceDir, name string) (string, error) {
	if !strings.HasSuffix(name, ".md") {
		name = name + ".md"
	}

	// Try workspace prompts first
	localPath := filepath.Join(workspaceDir, ".phaser", "prompts", name)
	if content, err := os.ReadFile(localPath); err == nil {
		return string(content), nil
	}

	// Fall back to embedded
	return Get(name)
}

// Render executes the named prompt with data, honoring workspace overrides
func Render(workspaceDir, name string, data any) (string, error) {
	content, err := GetForWorkspace(workspaceDir, name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt %s: %w", name, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
