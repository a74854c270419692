package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrRepositoryUnavailable is matched by every failure of the backing store.
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	// ErrValidation is matched by every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrCategoryNotFound is returned when a product references a missing category.
	ErrCategoryNotFound = errors.New("category not found")
)

// RepositoryError wraps a persistence failure with the operation that hit it.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepositoryUnavailable
}

// NewRepositoryError wraps err unless it is nil or already a not-found error.
func NewRepositoryError(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &RepositoryError{Op: op, Err: err}
}

// ValidationError carries the per-field messages of a rejected input.
type ValidationError struct {
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Errors[field].Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the messages keyed by field name.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for field, err := range e.Errors {
		out[field] = err.Error()
	}
	return out
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{Errors: errs}
	}
	return err
}
