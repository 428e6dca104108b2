package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures for callers that need to branch on them.
type ErrorCode string

const (
	ErrCodeConfig   ErrorCode = "CONFIG"
	ErrCodeBackend  ErrorCode = "BACKEND"
	ErrCodeIO       ErrorCode = "IO"
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeParse    ErrorCode = "PARSE"
	ErrCodeJSON     ErrorCode = "JSON"
	ErrCodeWatch    ErrorCode = "WATCH"
)

// Error is the domain-level error type. Backend carries the short name of the
// backend that failed when the code is ErrCodeBackend.
type Error struct {
	Code    ErrorCode
	Backend string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Backend != "" {
		return fmt.Sprintf("backend '%s' error: %s", e.Backend, msg)
	}
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BackendError marks a failure as belonging to a named backend.
func BackendError(backend, message string, err error) *Error {
	return &Error{
		Code:    ErrCodeBackend,
		Backend: backend,
		Message: message,
		Err:     err,
	}
}

// ParseError builds an ErrCodeParse error from a format string.
func ParseError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeParse, Message: fmt.Sprintf(format, args...)}
}

// Common domain errors.
var (
	ErrTaskNotFound = NewError(ErrCodeNotFound, "task not found")
	ErrNoBackends   = &Error{Code: ErrCodeBackend, Backend: "none", Message: "no backends configured"}
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
