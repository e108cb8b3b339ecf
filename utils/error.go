package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// Error kinds surfaced by the settings and export operations.
// Wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage error")
)

// ValidationError wraps ErrValidation with a client-facing message.
func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// NotFoundError wraps ErrNotFound with a client-facing message.
func NotFoundError(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// StorageError wraps a datastore failure; err stays reachable through errors.Unwrap chains.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
