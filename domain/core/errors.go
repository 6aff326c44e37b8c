package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrTrialNotFound    = fmt.Errorf("%w: field trial", ErrNotFound)
	ErrCostNotFound     = fmt.Errorf("%w: cost", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("%w: document", ErrNotFound)
	ErrEventNotFound    = fmt.Errorf("%w: event", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingField     = fmt.Errorf("%w: missing required field", ErrInvalidInput)
	ErrInvalidEnum      = fmt.Errorf("%w: unknown enum value", ErrInvalidInput)
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Statistics errors
	ErrDegenerateInput    = errors.New("degenerate statistical input")
	ErrUndefinedStatistic = errors.New("statistic is undefined for this input")

	// Session errors
	ErrNoSession = errors.New("no authenticated user")
)

// NewNotFoundError returns an ErrNotFound wrapping error naming the resource and id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewValidationError returns an ErrInvalidInput wrapping error for a field
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

// NewMissingFieldError reports an absent required field
func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// NewEnumError reports a value outside the allowed set
func NewEnumError(field, value string, allowed ...string) error {
	return fmt.Errorf("%w: %s=%q (allowed %v)", ErrInvalidEnum, field, value, allowed)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsStatisticsError(err error) bool {
	return errors.Is(err, ErrDegenerateInput) ||
		errors.Is(err, ErrUndefinedStatistic) ||
		errors.Is(err, ErrInsufficientData)
}
