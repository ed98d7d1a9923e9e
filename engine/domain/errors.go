package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for profile validation failures.
var (
	ErrAgeOutOfRange        = errors.New("age out of range")
	ErrRetirementNotAfter   = errors.New("retirement age must be after current age")
	ErrZeroIncome           = errors.New("income must be positive")
	ErrNegativeSavings      = errors.New("savings cannot be negative")
	ErrNegativeGoal         = errors.New("savings goal cannot be negative")
	ErrInvalidMortgageFlag  = errors.New("hasMortgage must be yes or no")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// IsValidation reports whether err is a profile validation failure, as
// opposed to an internal pipeline error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
