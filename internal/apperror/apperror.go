// Package apperror defines the domain errors shared by every layer.
//
// Services return these; the HTTP layer maps them to a status code and to
// the numeric code carried in the response envelope. Each constructor wraps
// one sentinel so callers can branch with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrOperation    = errors.New("operation failed")
)

// Envelope codes. 0 is success; the rest follow the platform's
// status-times-100 numbering so clients can group them.
const (
	CodeSuccess      = 0
	CodeParams       = 40000
	CodeNotLogin     = 40100
	CodeNoAuth       = 40101
	CodeNotFound     = 40400
	CodeConflict     = 40900
	CodeSystem       = 50000
	CodeOperation    = 50001
	CodeTooManyCalls = 42900
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource string, key any) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with %v", resource, key),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means no (valid) identity was presented at all.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// OperationFailed reports a write the store accepted but did not apply,
// e.g. an UPDATE that matched zero rows after the record was loaded.
func OperationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrOperation,
		Message: message,
	}
}

// Code returns the envelope code for err. Errors that carry no sentinel
// from this package are system errors.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, ErrValidation):
		return CodeParams
	case errors.Is(err, ErrUnauthorized):
		return CodeNotLogin
	case errors.Is(err, ErrForbidden):
		return CodeNoAuth
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrOperation):
		return CodeOperation
	default:
		return CodeSystem
	}
}
