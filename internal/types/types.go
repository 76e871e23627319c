// Package types defines the records exchanged with the assistant CLI.
// Every struct here doubles as the JSON schema sent with --json-schema.
package types

import (
	"fmt"
	"strings"
)

// NoNextPhase is the NextPhaseIndex sentinel meaning every phase is complete
const NoNextPhase = -1

// Phase is one unit of planned work from the planning document
type Phase struct {
	Description string      `json:"description"`
	Status      PhaseStatus `json:"status"`
}

// IsCompleted returns true if the phase is marked complete
func (p Phase) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// StatusReport is the assistant's reading of the planning document.
// A report is never merged with an earlier one; the newest report replaces all state.
type StatusReport struct {
	Phases         []Phase `json:"phases"`
	NextPhaseIndex int     `json:"nextPhaseIndex" jsonschema:"minimum=-1,description=Index of the next phase to execute (0-based) or -1 if all phases are complete"`
}

// IsComplete returns true if the report signals that no phase is left to run
func (r *StatusReport) IsComplete() bool {
	return r.NextPhaseIndex == NoNextPhase
}

// Next returns the phase at NextPhaseIndex, or nil when complete or out of range
func (r *StatusReport) Next() *Phase {
	if r.NextPhaseIndex < 0 || r.NextPhaseIndex >= len(r.Phases) {
		return nil
	}
	return &r.Phases[r.NextPhaseIndex]
}

// Remaining counts phases not marked completed
func (r *StatusReport) Remaining() int {
	n := 0
	for _, p := range r.Phases {
		if !p.IsCompleted() {
			n++
		}
	}
	return n
}

// Validate checks that NextPhaseIndex is -1 or a valid index and every status is known
func (r *StatusReport) Validate() error {
	errs := &ValidationErrors{}

	if r.NextPhaseIndex < NoNextPhase || r.NextPhaseIndex >= len(r.Phases) {
		errs.Add("nextPhaseIndex",
			fmt.Sprintf("-1 or an index in [0, %d)", len(r.Phases)),
			r.NextPhaseIndex,
			"index is out of range for the reported phases")
	}

	for i, p := range r.Phases {
		if strings.TrimSpace(p.Description) == "" {
			errs.Add(fmt.Sprintf("phases[%d].description", i), "non-empty string", p.Description, "field is required")
		}
		if !p.Status.IsValid() {
			errs.Add(fmt.Sprintf("phases[%d].status", i), "one of: pending, in_progress, completed", string(p.Status), "invalid value")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ExecutionResult is what the assistant reports after attempting a phase
type ExecutionResult struct {
	Success bool `json:"success" jsonschema:"description=Whether the phase was completed successfully"`
}

// Command is a single OS action requested by voice input
type Command struct {
	Type string         `json:"type" jsonschema:"description=Command type (e.g. 'openApp' or 'scroll' or 'openFile')"`
	Args map[string]any `json:"args" jsonschema:"description=Command arguments as key-value pairs"`
}

// String renders the command for log lines
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Type
	}
	return fmt.Sprintf("%s %v", c.Type, c.Args)
}

// ParsedInput is the structured interpretation of one chunk of voice input
type ParsedInput struct {
	SessionPrompt *string   `json:"sessionPrompt" jsonschema:"description=The prompt to send to the active Claude session in the terminal"`
	Commands      []Command `json:"commands"`
}

// Prompt returns the session prompt, or "" when there is none
func (p *ParsedInput) Prompt() string {
	if p.SessionPrompt == nil {
		return ""
	}
	return strings.TrimSpace(*p.SessionPrompt)
}

// HasPrompt returns true if there is a non-blank session prompt to relay
func (p *ParsedInput) HasPrompt() bool {
	return p.Prompt() != ""
}
