// Package errors provides common domain error types for the recap client.
//
// This package defines sentinel errors for conditions the workspace detects
// before a request ever reaches the network (validation gaps, operations on a
// meeting that was never generated). Using typed errors enables consistent
// error handling with errors.Is() checks.
//
// Usage:
//
//	import rcerrors "github.com/recaphq/recap-cli/pkg/errors"
//
//	// Return a domain error
//	return fmt.Errorf("%w: no transcript text or file", rcerrors.ErrValidation)
//
//	// Check for domain errors
//	if rcerrors.IsValidation(err) {
//	    // handle precondition failure
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for client-side conditions.
var (
	// ErrValidation indicates a precondition failed before issuing a call
	// (empty transcript on generate, no recipients on email).
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the requested meeting was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates the operation is not valid for the current
	// workspace state (saving with no meeting, canceling outside edit mode).
	ErrInvalidState = errors.New("invalid state")
)

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
