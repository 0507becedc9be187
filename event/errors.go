package event

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField matches validation errors for absent mandatory fields.
	ErrMissingField = errors.New("missing mandatory field")
	// ErrInvalidEnum matches validation errors for values outside an enumeration.
	ErrInvalidEnum = errors.New("value not in enumeration")
	// ErrOutOfRange matches validation errors for numbers outside their range.
	ErrOutOfRange = errors.New("value out of range")
)

// ValidationKind classifies one validation failure.
type ValidationKind int

const (
	MissingField ValidationKind = iota + 1
	InvalidEnum
	OutOfRange
)

// String returns the kind name.
func (k ValidationKind) String() string {
	switch k {
	case MissingField:
		return "MissingField"
	case InvalidEnum:
		return "InvalidEnum"
	case OutOfRange:
		return "OutOfRange"
	default:
		return fmt.Sprintf("ValidationKind(%d)", int(k))
	}
}

// ValidationError reports the first rule an event violated.
type ValidationError struct {
	Kind   ValidationKind
	Domain Domain
	Field  string
	Value  string
}

// Error implements error.
func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%s event: %s: %s", e.Domain, ErrMissingField, e.Field)
	case InvalidEnum:
		return fmt.Sprintf("%s event: %s: %s=%q", e.Domain, ErrInvalidEnum, e.Field, e.Value)
	default:
		return fmt.Sprintf("%s event: %s: %s=%s", e.Domain, ErrOutOfRange, e.Field, e.Value)
	}
}

// Unwrap maps the kind onto its sentinel so errors.Is works.
func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case MissingField:
		return ErrMissingField
	case InvalidEnum:
		return ErrInvalidEnum
	case OutOfRange:
		return ErrOutOfRange
	}
	return nil
}
