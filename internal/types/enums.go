package types

import "github.com/invopop/jsonschema"

// PhaseStatus represents the status of a phase as recorded in the planning document
type PhaseStatus string

const (
	// StatusPending indicates the phase has not started
	StatusPending PhaseStatus = "pending"
	// StatusInProgress indicates the phase was started but not marked done
	StatusInProgress PhaseStatus = "in_progress"
	// StatusCompleted indicates the phase is marked complete in the document
	StatusCompleted PhaseStatus = "completed"
)

// IsValid checks if a status value is valid
func (s PhaseStatus) IsValid() bool {
	for _, valid := range AllPhaseStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// AllPhaseStatuses returns all valid status values
func AllPhaseStatuses() []PhaseStatus {
	return []PhaseStatus{StatusPending, StatusInProgress, StatusCompleted}
}

// String returns the string representation of the status
func (s PhaseStatus) String() string {
	return string(s)
}

// JSONSchema constrains the status to its enum values in generated schemas
func (PhaseStatus) JSONSchema() *jsonschema.Schema {
	values := AllPhaseStatuses()
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return &jsonschema.Schema{
		Type: "string",
		Enum: enum,
	}
}

// Command kinds understood by the dispatcher
const (
	CommandOpenApp  = "openApp"
	CommandOpenFile = "openFile"
	CommandScroll   = "scroll"
)

// AllCommandKinds returns the command kinds in registry order
func AllCommandKinds() []string {
	return []string{CommandOpenApp, CommandOpenFile, CommandScroll}
}

// ScrollDirection is the direction argument of a scroll command
type ScrollDirection string

const (
	ScrollUp     ScrollDirection = "up"
	ScrollDown   ScrollDirection = "down"
	ScrollTop    ScrollDirection = "top"
	ScrollBottom ScrollDirection = "bottom"
)

// IsValid checks if a scroll direction is valid
func (d ScrollDirection) IsValid() bool {
	switch d {
	case ScrollUp, ScrollDown, ScrollTop, ScrollBottom:
		return true
	}
	return false
}

// IsJump returns true for directions that jump to a document edge in one keystroke
func (d ScrollDirection) IsJump() bool {
	return d == ScrollTop || d == ScrollBottom
}
