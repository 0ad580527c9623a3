// Package apperr defines the error taxonomy surfaced by the engine: bad input,
// duplicates, missing records, failing external services, missing
// authentication and partially applied bulk operations.
package apperr

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned when an operation needs an authenticated user
// and none is present. Callers redirect to a login flow on it.
var ErrAuthRequired = errors.New("authentication required")

// ValidationError reports caller input rejected before any external call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DuplicateError reports an attempt to create a record that already exists.
type DuplicateError struct {
	Resource string
	Key      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

// Duplicate builds a DuplicateError.
func Duplicate(resource, key string) error {
	return &DuplicateError{Resource: resource, Key: key}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ExternalError wraps a failure of the data, storage or identity service.
// The cause is passed through unchanged.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// External wraps err as an ExternalError unless it already belongs to the
// taxonomy, in which case it is returned as is. A nil err stays nil.
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &ExternalError{Op: op, Err: err}
}

// BatchError reports a bulk operation that stopped partway. Done counts the
// items committed before the failure; they are not rolled back.
type BatchError struct {
	Step  string
	Done  int
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s failed after %d of %d: %v", e.Step, e.Done, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Classified reports whether err already carries one of the taxonomy types.
func Classified(err error) bool {
	return IsValidation(err) || IsDuplicate(err) || IsNotFound(err) ||
		IsExternal(err) || IsAuthRequired(err) || IsBatch(err)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsDuplicate(err error) bool {
	var target *DuplicateError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsExternal(err error) bool {
	var target *ExternalError
	return errors.As(err, &target)
}

func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}

func IsBatch(err error) bool {
	var target *BatchError
	return errors.As(err, &target)
}

// AsBatch extracts a BatchError from err.
func AsBatch(err error) (*BatchError, bool) {
	var target *BatchError
	ok := errors.As(err, &target)
	return target, ok
}
