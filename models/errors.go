package models

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrInsufficientData        = errors.New("insufficient data")
	ErrUnrecognizedUnit        = errors.New("unrecognized unit")
	ErrConstraintUnsatisfiable = errors.New("constraint unsatisfiable")
	ErrNotFound                = errors.New("not found")
	ErrInvalidTransition       = errors.New("invalid status transition")
)

// ValidationError rejects malformed input before any work begins.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// PersistenceError wraps a repository failure. Callers roll back and report a server error.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
