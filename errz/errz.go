// Package errz defines the structured errors surfaced by the engine.
//
// Most problems a transform runs into are recovered locally and never become
// an error: a pattern that does not match, a rewrite that would be unsound in
// its position, or a decoder that fails inside the sandbox. The kinds defined
// here cover what is surfaced to callers.
package errz

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates the input could not be parsed.
	ErrSyntax ErrorKind = iota
	// ErrInvariant indicates a malformed tree, such as a template literal
	// whose quasi and expression counts disagree.
	ErrInvariant
	// ErrConfig indicates an invalid pipeline configuration, such as an
	// unknown transform name.
	ErrConfig
	// ErrSandbox indicates a decoder evaluation failure.
	ErrSandbox
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrInvariant:
		return "invariant violation"
	case ErrConfig:
		return "config error"
	case ErrSandbox:
		return "sandbox error"
	default:
		return "error"
	}
}

// Error is the structured error type used throughout the engine.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is one of the kind sentinels below and matches
// this error's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Cause == nil
}

// WithCause wraps the error with a cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Sentinels for matching on kind with errors.Is.
var (
	Syntax    = &Error{Kind: ErrSyntax}
	Invariant = &Error{Kind: ErrInvariant}
	Config    = &Error{Kind: ErrConfig}
	Sandbox   = &Error{Kind: ErrSandbox}
)

// New creates an error of the given kind.
func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
