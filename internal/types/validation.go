package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidReport matches every ValidationErrors returned for a report
var ErrInvalidReport = errors.New("invalid report")

// ValidationError is one rejected field of an assistant report
type ValidationError struct {
	Field    string // JSON path such as "phases[0].status"
	Expected string
	Actual   any
	Message  string
}

// ValidationErrors collects every problem found in a report so the
// assistant's mistake can be shown in full
type ValidationErrors struct {
	Errors []ValidationError
}

// Add records a rejected field
func (v *ValidationErrors) Add(field, expected string, actual any, msg string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:    field,
		Expected: expected,
		Actual:   actual,
		Message:  msg,
	})
}

// HasErrors returns true if any field was rejected
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Fields lists the rejected field paths in the order they were found
func (v *ValidationErrors) Fields() []string {
	fields := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		fields[i] = e.Field
	}
	return fields
}

func (v *ValidationErrors) Error() string {
	switch len(v.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		e := v.Errors[0]
		return fmt.Sprintf("%s: %s (expected %s, got %s)", e.Field, e.Message, e.Expected, formatActual(e.Actual))
	}

	parts := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%d invalid fields: %s", len(v.Errors), strings.Join(parts, "; "))
}

// Is makes ValidationErrors match ErrInvalidReport
func (v *ValidationErrors) Is(target error) bool {
	return target == ErrInvalidReport
}

func formatActual(actual any) string {
	switch v := actual.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}
