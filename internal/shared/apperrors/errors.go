// Package apperrors classifies failures into the three kinds callers can act on.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-checkable classification sent to clients.
type Kind string

const (
	KindBadInput Kind = "bad_input"
	KindNotFound Kind = "not_found"
	KindInternal Kind = "internal"
)

// Error carries a public message plus an optional private cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation builds a bad_input error. cause is usually a domain sentinel.
func Validation(message string, cause error) *Error {
	return &Error{Kind: KindBadInput, Message: message, Cause: cause}
}

func NotFound(message string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Cause: cause}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the classification of err, treating unclassified errors as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
