package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrInvalidInput marks a candidate payload that is missing required
	// fields or is malformed. Stores reject it before allocating a flight number.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistenceUnavailable marks a durable backend that could not be reached.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrNotFound is reserved for lookups by flight number.
	ErrNotFound = errors.New("not found")
)

// ValidationError lists the offending fields of a rejected payload, keyed by
// their JSON names.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func newValidationError(err error) error {
	var fieldErrs ozzo.Errors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		fields[field] = fieldErr.Error()
	}
	return &ValidationError{Fields: fields}
}
