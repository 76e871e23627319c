package command

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceMissing is returned when a file or glob match does not exist
	ErrResourceMissing = errors.New("resource missing")

	// ErrInvalidArgument is returned for missing or malformed command arguments
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCommand is returned for a command type with no handler
	ErrUnknownCommand = errors.New("unknown command type")
)

// Error is a command failure with a user-facing message
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func failf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
