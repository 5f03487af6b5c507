package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure produced while resolving, executing, or
// reporting a step.
type ErrorKind string

const (
	ErrUnresolvedStep    ErrorKind = "UnresolvedStep"
	ErrResolutionFailure ErrorKind = "ResolutionFailure"
	ErrElementNotFound   ErrorKind = "ElementNotFound"
	ErrClickIntercepted  ErrorKind = "ClickIntercepted"
	ErrInputRejected     ErrorKind = "InputRejected"
	ErrNavigation        ErrorKind = "NavigationError"
	ErrAssertionFailed   ErrorKind = "AssertionFailed"
	ErrWaitTimeout       ErrorKind = "WaitTimeout"
	ErrInfrastructure    ErrorKind = "InfrastructureError"
	ErrReportWrite       ErrorKind = "ReportWriteError"
)

// Error is a typed failure carrying its kind and an optional cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError returns an Error of the given kind wrapping cause (which may be nil).
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Errorf formats an Error of the given kind. A %w verb in format is honored:
// the wrapped error becomes the cause.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Msg: err.Error(), Err: errors.Unwrap(err)}
}

// KindOf returns the kind of err. Errors that carry no kind are treated as
// infrastructure failures. A nil error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInfrastructure
}

// IsStepLevel reports whether kind is converted into a failed step rather
// than aborting the case.
func IsStepLevel(kind ErrorKind) bool {
	switch kind {
	case ErrUnresolvedStep, ErrResolutionFailure, ErrElementNotFound, ErrClickIntercepted,
		ErrInputRejected, ErrNavigation, ErrAssertionFailed, ErrWaitTimeout:
		return true
	}
	return false
}

// IsRetryable reports whether a runner may re-attempt a step that failed
// with kind. Only conditions that can change as the page settles qualify.
func IsRetryable(kind ErrorKind) bool {
	switch kind {
	case ErrElementNotFound, ErrClickIntercepted, ErrWaitTimeout:
		return true
	}
	return false
}
