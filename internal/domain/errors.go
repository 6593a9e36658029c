package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that no record matches a query or id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized signals missing or invalid credentials.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrEmptyUpdate signals an update payload with no usable fields.
	ErrEmptyUpdate = errors.New("empty update")
)

// ValidationError reports a field that failed a constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness collision, naming the field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a record with the same %s already exists", e.Field)
}
