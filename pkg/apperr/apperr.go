// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindInvalidArgument  Kind = "invalid_argument"
	KindEncode           Kind = "encode"
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindConflict         Kind = "conflict"
	KindStore            Kind = "store"
	KindRender           Kind = "render"
	KindAuth             Kind = "auth"
	KindInternal         Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:       http.StatusBadRequest,
	KindInvalidArgument:  http.StatusBadRequest,
	KindEncode:           http.StatusBadRequest,
	KindUnauthenticated:  http.StatusUnauthorized,
	KindForbidden:        http.StatusForbidden,
	KindNotFound:         http.StatusNotFound,
	KindMethodNotAllowed: http.StatusMethodNotAllowed,
	KindConflict:         http.StatusConflict,
	KindStore:            http.StatusInternalServerError,
	KindRender:           http.StatusInternalServerError,
	KindAuth:             http.StatusInternalServerError,
	KindInternal:         http.StatusInternalServerError,
}

// Error is an application error with a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	status  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	if e.status != 0 {
		return e.status
	}
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithStatus returns a copy of the error that maps to the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: e.Err, status: status}
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind with a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation returns a 400 for missing or malformed input.
func Validation(message string) *Error { return New(KindValidation, message) }

// InvalidArgument returns a 400 for malformed identifiers.
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }

// Unauthenticated returns a 401.
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Forbidden returns a 403.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound returns a 404.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict returns a 409.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Store wraps a document store failure.
func Store(message string, err error) *Error { return Wrap(KindStore, message, err) }

// Render wraps a PDF composition failure.
func Render(message string, err error) *Error { return Wrap(KindRender, message, err) }

// As extracts an *Error from err, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
