package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotFound signals that no product matched a code lookup.
	ErrNotFound = errors.New("product not found")
	// ErrValidation signals invalid client input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateCode signals a unique index violation on code.
	ErrDuplicateCode = errors.New("product code already exists")
	// ErrStore signals an unreachable store or a failed query.
	ErrStore = errors.New("store failure")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StoreError keeps the store operation and the driver error for diagnostics.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

func indexedField(name string, i int, sub string) string {
	return name + "[" + strconv.Itoa(i) + "]." + sub
}
