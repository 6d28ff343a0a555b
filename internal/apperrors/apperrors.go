// Package apperrors provides coded domain errors shared by services and
// handlers. Services return typed errors; handlers map them to HTTP status
// codes via HTTPStatus, with errors.Is/errors.As working across the codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeConflict     Code = "CONFLICT"
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code and message.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code, so sentinel comparisons
// like errors.Is(err, apperrors.ErrNotFound) work regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithCause returns a copy wrapping an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not-found error.
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error { return &Error{Code: CodeForbidden, Message: msg} }

// Conflict creates a conflict error.
func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }

// Validation creates a validation error.
func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }

// Internal creates an internal error.
func Internal(msg string) *Error { return &Error{Code: CodeInternal, Message: msg} }

// Internalf creates an internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}
