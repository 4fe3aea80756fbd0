// Package apperrors defines the error taxonomy shared by services and
// handlers: each error carries a kind that maps to an HTTP status, a stable
// machine-readable code, and a client-safe message.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	InvalidInput Kind = iota + 1
	Conflict
	Unauthorized
	Forbidden
	NotFound
	Internal
)

// HTTPStatus returns the HTTP status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string // stable code string, e.g. "username_taken"
	Message string // safe to return to clients
	Err     error  // underlying cause, never serialized
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

// New creates a classified error with no underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// From extracts the classified error from err, or wraps it as Internal so
// unexpected failures never leak store details to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, Internal, "internal_error", "An unexpected error occurred")
}
