package session

import (
	"errors"
	"fmt"
)

// Caller-facing outcomes. None of them is fatal to the process.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("session not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrStrategyMismatch = errors.New("strategy mismatch")
	ErrUnsupported      = errors.New("operation not supported by strategy")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidState     = errors.New("invalid state transition")
)

// ValidationError names the offending field of a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Unsupported reports an operation the strategy has no meaning for. It matches
// both ErrUnsupported and ErrStrategyMismatch.
func Unsupported(op string, strategy Strategy) error {
	return UnsupportedMessage(fmt.Sprintf("%s on %s", op, strategy))
}

// UnsupportedMessage is Unsupported with a preformatted message, for errors
// rebuilt on the far side of a transport.
func UnsupportedMessage(msg string) error {
	return fmt.Errorf("%s: %w", msg, unsupportedError{})
}

type unsupportedError struct{}

func (unsupportedError) Error() string { return ErrUnsupported.Error() }

func (unsupportedError) Is(target error) bool {
	return target == ErrUnsupported || target == ErrStrategyMismatch
}
