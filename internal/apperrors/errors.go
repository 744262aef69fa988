package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrProviderUnavailable indicates every configured rate provider failed or was rejected.
var ErrProviderUnavailable = errors.New("no rate provider available")

// ErrInsufficientCoverage indicates a provider answered without enough major-currency rates.
var ErrInsufficientCoverage = errors.New("insufficient major currency coverage")

// ErrPersistence indicates the rate store rejected a read or write.
var ErrPersistence = errors.New("persistence error")

// ErrNoRateFound indicates every resolution tier, including the emergency table, came up empty.
var ErrNoRateFound = errors.New("no exchange rate found")

// ErrSuspiciousRate indicates a resolved rate failed the plausibility check.
var ErrSuspiciousRate = errors.New("suspicious exchange rate")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
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

// NewAppError builds an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError builds a 400 AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewPersistenceError wraps a driver error so it matches both ErrPersistence and the cause.
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
}
