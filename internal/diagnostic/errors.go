package diagnostic

import (
	"errors"
	"fmt"
)

var (
	// ErrUserInput marks caller-correctable input problems.
	ErrUserInput = errors.New("invalid input")
	// ErrLibraryIntegrity marks template library conflicts that abort a run before output.
	ErrLibraryIntegrity = errors.New("template library integrity")
	// ErrValueValidation marks observed values outside an item's declared constraints.
	ErrValueValidation = errors.New("value validation failed")
	// ErrNeedsMergeStrategy is returned when a version merge is required but no strategy was supplied.
	ErrNeedsMergeStrategy = errors.New("version merge strategy required")
)

// Error wraps one of the sentinel kinds with a message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// UserInputf builds an ErrUserInput error.
func UserInputf(format string, args ...any) error {
	return &Error{Kind: ErrUserInput, Msg: fmt.Sprintf(format, args...)}
}

// Integrityf builds an ErrLibraryIntegrity error.
func Integrityf(format string, args ...any) error {
	return &Error{Kind: ErrLibraryIntegrity, Msg: fmt.Sprintf(format, args...)}
}
