package syncstore

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a mutation rejected before any state changed.
	ErrValidation = errors.New("validation failed")
	// ErrSync marks a failed remote push or pull.
	ErrSync = errors.New("sync failed")
)

// ValidationError reports why an item was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for building a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// SyncError wraps a remote failure. For a failed mutation push the local
// change has already been rolled back; for a failed pull local state is
// left as it was.
type SyncError struct {
	Domain string
	Op     string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Domain, e.Err)
}

func (e *SyncError) Is(target error) bool { return target == ErrSync }

func (e *SyncError) Unwrap() error { return e.Err }
