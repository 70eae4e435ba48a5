// Package apperror provides domain-specific error types for EduSeek.
// These errors carry an HTTP status code, a machine-readable kind, and a
// user-safe message. The Echo error handler maps them to the standard
// response envelope automatically.
//
// NEVER return raw database or infrastructure errors to the client. Always
// wrap them in an apperror type or return a generic internal error.
//
// Callers discriminate errors by Kind, never by matching message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError for programmatic handling. The transport
// layer switches on the kind; messages are for humans only.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindUnauthorized   Kind = "unauthorized"
	KindAccountLocked  Kind = "account_locked"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindNotImplemented Kind = "not_implemented"
	KindInternal       Kind = "internal_error"
)

// AppError is the base error type for all domain errors. It carries an
// HTTP status code, a machine-readable kind, and a human-readable
// message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Kind is the machine-readable error classifier.
	Kind Kind `json:"kind"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Errors holds itemized detail lines (e.g. per-field validation
	// failures). Safe for the client.
	Errors []string `json:"errors,omitempty"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// --- Constructors for common error types ---

// NewValidation creates a 400 error with itemized reasons.
func NewValidation(message string, reasons ...string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
		Errors:  reasons,
	}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: message,
	}
}

// NewAccountLocked creates a 401 error with the account_locked kind so
// clients can distinguish lockout from bad credentials.
func NewAccountLocked(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Kind:    KindAccountLocked,
		Message: message,
	}
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Kind:    KindForbidden,
		Message: message,
	}
}

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewRateLimited creates a 429 Too Many Requests error.
func NewRateLimited(message string) *AppError {
	return &AppError{
		Code:    http.StatusTooManyRequests,
		Kind:    KindRateLimited,
		Message: message,
	}
}

// NewNotImplemented creates a 501 error for designed-but-unbuilt
// operations. Distinct from failure: the route exists on purpose.
func NewNotImplemented(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotImplemented,
		Kind:    KindNotImplemented,
		Message: message,
	}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Kind:     KindInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe error message from an error. If the
// error is an AppError, returns its Message field (which is safe to expose).
// For any other error type, returns a generic message to prevent leaking
// internal details like table names, query structure, or stack traces.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
