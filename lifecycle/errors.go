package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed
type Kind string

// Error kinds returned by the engine
const (
	NotFound          Kind = "NotFound"
	Unauthorized      Kind = "Unauthorized"
	Forbidden         Kind = "Forbidden"
	ValidationFailed  Kind = "ValidationFailed"
	StateConflict     Kind = "StateConflict"
	DependencyFailure Kind = "DependencyFailure"
)

// Error is the error type returned by every engine operation
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that did not come from the engine
// are reported as DependencyFailure, nil as the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return DependencyFailure
}

// MessageOf returns the message of an engine error, or a generic one for
// anything else so internal faults never reach a caller verbatim.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal dependency failure"
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func dependency(message string, err error) *Error {
	return &Error{Kind: DependencyFailure, Message: message, Err: err}
}
