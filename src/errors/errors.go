// Package errors defines the coded error type shared across bandbox.
//
// Three codes carry the run semantics: configuration and path errors are
// fatal and abort before any report is produced, rule execution errors are
// recovered by the engine and surface as an errored rule.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category independently of its message.
type ErrorCode string

const (
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Scan root missing or prefix removal mismatch
	ErrPath ErrorCode = "PATH"

	// A single rule failed while running
	ErrRuleExecution ErrorCode = "RULE_EXECUTION"
)

// Error is a structured error with a stable code and optional details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any)}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps err with a code and a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail attaches a key/value detail and returns the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether any error in err's chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the code of the first *Error in err's chain, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}
