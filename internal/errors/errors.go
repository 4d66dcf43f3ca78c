// Package errors provides coded application errors for the ModelShare API.
//
// Every Code maps to an HTTP status and to the numeric code of the
// {status:"nok", error:{code, msg}} envelope clients receive.
//
// Usage:
//
//	// In services - return typed errors
//	if err != nil {
//	    return errors.Storage(err)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrStorage) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeMalformedInput     Code = "MALFORMED_INPUT"
	CodeValidation         Code = "VALIDATION"
	CodeUnsupportedMethod  Code = "UNSUPPORTED_METHOD"
	CodeStorage            Code = "STORAGE"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL"
)

// Envelope codes. 0, 1 and 2 are the codes clients have always seen; the
// rest belong to the authentication routes.
const (
	EnvelopeMalformed    = 0
	EnvelopeMethod       = 1
	EnvelopeStorage      = 2
	EnvelopeAuth         = 3
	EnvelopeRateLimited  = 4
	envelopeMalformedMsg = "Couldn't parse the JSON"
	envelopeMethodMsg    = "Unsupported HTTP/1.1 method for this service"
	envelopeStorageMsg   = "DB error"
	envelopeAuthMsg      = "Authentication failed"
	envelopeRateLimitMsg = "Too many requests"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMalformedInput, CodeValidation:
		return http.StatusBadRequest
	case CodeUnsupportedMethod:
		return http.StatusMethodNotAllowed
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Envelope returns the numeric envelope code and its fixed message.
func (c Code) Envelope() (int, string) {
	switch c {
	case CodeMalformedInput, CodeValidation:
		return EnvelopeMalformed, envelopeMalformedMsg
	case CodeUnsupportedMethod:
		return EnvelopeMethod, envelopeMethodMsg
	case CodeUnauthorized, CodeInvalidCredentials:
		return EnvelopeAuth, envelopeAuthMsg
	case CodeRateLimited:
		return EnvelopeRateLimited, envelopeRateLimitMsg
	default:
		return EnvelopeStorage, envelopeStorageMsg
	}
}

// CodeForStatus picks the code that best describes an HTTP status produced
// outside the services, e.g. by the router or request decoding.
func CodeForStatus(status int) Code {
	switch {
	case status == http.StatusMethodNotAllowed:
		return CodeUnsupportedMethod
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status >= 400 && status < 500:
		return CodeMalformedInput
	default:
		return CodeStorage
	}
}

// Error is an application error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrMalformedInput     = &Error{Code: CodeMalformedInput, Message: "malformed input"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnsupportedMethod  = &Error{Code: CodeUnsupportedMethod, Message: "unsupported method"}
	ErrStorage            = &Error{Code: CodeStorage, Message: "storage error"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrRateLimited        = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Malformed creates a malformed input error.
func Malformed(msg string) *Error {
	return &Error{Code: CodeMalformedInput, Message: msg}
}

// Malformedf creates a malformed input error with formatted message.
func Malformedf(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Storage wraps a persistence failure.
func Storage(err error) *Error {
	return &Error{Code: CodeStorage, Message: "storage error", cause: err}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// InvalidCredentials creates an invalid credentials error.
func InvalidCredentials(msg string) *Error {
	return &Error{Code: CodeInvalidCredentials, Message: msg}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
