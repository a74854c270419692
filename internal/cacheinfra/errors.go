package cacheinfra

import (
	"errors"
	"fmt"
)

// ErrUnavailable is matched by every error a store returns when the backend
// could not serve the operation.
var ErrUnavailable = errors.New("cache store unavailable")

// StoreError records the failed store operation and the key it targeted.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrUnavailable so callers can test for the category
// without knowing the backend error.
func (e *StoreError) Is(target error) bool {
	return target == ErrUnavailable
}

func storeErr(op, key string, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}
