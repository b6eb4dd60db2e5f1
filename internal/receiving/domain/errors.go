package domain

import "fmt"

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing or inactive entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a state conflict: an already-active session or a
// uniqueness violation on a concurrent receive. ExistingSession is set on
// session-start conflicts so the caller can offer to resume it.
type ConflictError struct {
	Message         string
	ExistingSession *ReceivingSession
}

func (e *ConflictError) Error() string {
	return e.Message
}

// PersistenceError wraps a storage or transaction failure; the whole
// operation rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
