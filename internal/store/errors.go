package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status and machine-readable code.
type Error struct {
	Status  int    // HTTP status code
	Code    string // Machine-readable code for API payloads
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Status }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: e.Message, Err: err}
}

// Generic sentinel errors, returned by the generic Entity operations.
var (
	ErrNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Status:  http.StatusConflict,
		Code:    "ALREADY_EXISTS",
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION",
		Message: "invalid input",
	}
)

// Entity-specific sentinel errors.
var (
	ErrBookNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "book not found",
	}

	ErrBookExists = &Error{
		Status:  http.StatusConflict,
		Code:    "ALREADY_EXISTS",
		Message: "book already exists",
	}

	ErrReviewNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "review not found",
	}

	ErrReviewExists = &Error{
		Status:  http.StatusConflict,
		Code:    "ALREADY_EXISTS",
		Message: "review already exists",
	}

	ErrUserNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "user not found",
	}

	ErrEmailExists = &Error{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "email already in use",
	}

	ErrSessionNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "session not found",
	}

	ErrSessionExpired = &Error{
		Status:  http.StatusUnauthorized,
		Code:    "TOKEN_EXPIRED",
		Message: "session expired",
	}
)
