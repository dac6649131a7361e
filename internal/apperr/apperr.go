// Package apperr carries the HTTP status of expected request failures so
// services can state the outcome once and handlers just forward it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an expected failure with the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an arbitrary status.
func New(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

// StatusOf extracts the HTTP status carried by err. Errors that are not
// *Error (driver failures, broken invariants) map to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}
