package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies application errors. Anything that is not an *Error is
// treated as unexpected by the transport layer.
type ErrorKind int

const (
	KindUnauthorized ErrorKind = iota + 1
	KindValidation
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Issue names one offending input field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error carrying a user-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
	Issues  []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound())
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func ErrUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func ErrNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Not found"}
}

func NewValidationError(issues ...Issue) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Issues: issues}
}

// AsError unwraps err into an application error, if it is one.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
