package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrFormat indicates that an uploaded file is not a recognizable ledger export.
var ErrFormat = errors.New("unrecognized ledger export")

// ErrForbidden indicates that the actor lacks the role required for the action.
var ErrForbidden = errors.New("access denied")

// ErrUnauthorized indicates that no authenticated actor could be resolved.
var ErrUnauthorized = errors.New("unauthorized")

// ErrPersistence indicates a failure while reading or writing the ledger store.
var ErrPersistence = errors.New("persistence failure")

// AppError carries an HTTP-ish status code and a short message alongside the cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets 5xx AppErrors match ErrPersistence so callers can classify store failures.
func (e *AppError) Is(target error) bool {
	return target == ErrPersistence && e.Code >= 500
}

// NewAppError builds an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an error that matches ErrNotFound.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// NewValidationError returns an error that matches ErrValidation.
func NewValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// NewFormatError returns an error that matches ErrFormat.
func NewFormatError(message string) error {
	return fmt.Errorf("%w: %s", ErrFormat, message)
}
