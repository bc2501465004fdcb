package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("Invalid authentication")
	ErrForbidden       = errors.New("Unauthorized")
	ErrNotFound        = errors.New("not found")
)

// ValidationError reports a payload that fails a field constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound wraps ErrNotFound with the resource name, e.g. "Payment method not found".
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
