// Package apperr defines the error kinds surfaced by the queue room service.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the symbolic error class returned to clients.
type Kind string

const (
	InvalidInput        Kind = "INVALID_INPUT"
	Unauthorized        Kind = "UNAUTHORIZED"
	NotFound            Kind = "NOT_FOUND"
	ResourceUnavailable Kind = "RESOURCE_UNAVAILABLE"
	NoOperation         Kind = "NO_OPERATION"
	Internal            Kind = "INTERNAL"
)

// Error carries a Kind and a message that is safe to show to the client.
// Err is the underlying cause and is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Status overrides the default HTTP status of Kind when non-zero.
	Status int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and a client-facing message to err.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Unprocessable is an InvalidInput error rendered as 422, used when a
// document fails schema validation.
func Unprocessable(err error, message string) *Error {
	return &Error{Kind: InvalidInput, Message: message, Err: err, Status: http.StatusUnprocessableEntity}
}

// KindOf reports the kind of err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// MessageOf returns the client-facing message of err. Foreign errors get a
// generic message so internal details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred on the server."
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		if e.Status != 0 {
			return e.Status
		}
		return HTTPStatus(e.Kind)
	}
	return http.StatusInternalServerError
}

// HTTPStatus maps a kind onto a response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidInput:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case ResourceUnavailable:
		return http.StatusForbidden
	case NoOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
