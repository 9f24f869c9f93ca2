package service

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrContextTooLarge is the overflow class: the service rejected the
	// request because the input exceeded its size limit. Adapters wrap their
	// provider-specific rejection in an OverflowError, which matches this
	// sentinel under errors.Is.
	ErrContextTooLarge = errors.New("context too large for service input limit")

	// ErrEmptyReply is returned when the service produced no usable reply turn
	ErrEmptyReply = errors.New("service returned an empty reply")
)

// OverflowError carries the provider detail behind a context-too-large
// rejection.
type OverflowError struct {
	// Provider names the adapter that observed the rejection
	Provider string

	// Limit is the input limit in estimator units, 0 if unknown
	Limit int

	// Err is the provider's original error
	Err error
}

// Error implements the error interface
func (e *OverflowError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("%s: input exceeds limit of %d: %v", e.Provider, e.Limit, e.Err)
	}
	return fmt.Sprintf("%s: input exceeds service limit: %v", e.Provider, e.Err)
}

// Unwrap returns the provider's original error
func (e *OverflowError) Unwrap() error {
	return e.Err
}

// Is reports that an OverflowError belongs to the ErrContextTooLarge class
func (e *OverflowError) Is(target error) bool {
	return target == ErrContextTooLarge
}

// IsContextTooLarge reports whether err is a context-too-large rejection from
// any adapter.
func IsContextTooLarge(err error) bool {
	return errors.Is(err, ErrContextTooLarge)
}
