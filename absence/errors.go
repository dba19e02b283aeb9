/*
errors.go - Centralized error types for the absence engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The taxonomy is small and every error is recoverable at the calling
  boundary - the engine never terminates the process.

ERROR CATEGORIES:
  1. Validation errors  - malformed input (inverted range, missing field)
  2. Authorization errors - actor lacks permission for a transition
  3. Conflict errors    - a concurrent mutation lost a race
  4. Not-found errors   - referenced entity absent (distinct from a
                          failed query, which surfaces as its own error)

USAGE:
  Callers branch with errors.Is against the sentinels:

    if errors.Is(err, absence.ErrConflict) {
        // retry or report the race
    }

  and recover detail with errors.As against the structured types.

SEE ALSO:
  - lifecycle.go: produces authorization and conflict errors
  - workdays.go: produces range validation errors
*/
package absence

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all malformed-input failures.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = fmt.Errorf("%w: end date before start date", ErrValidation)

	// ErrUnauthorized is returned when an actor may not perform a transition.
	ErrUnauthorized = errors.New("not authorized")

	// ErrConflict is returned when optimistic locking detects that another
	// actor mutated the same entity first.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed input with enough detail to render a
// user-facing message.
type ValidationError struct {
	Field string
	Msg   string

	// Err optionally names a more specific sentinel (e.g. ErrInvalidRange).
	Err error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// AuthorizationError reports that an actor attempted a transition the
// authorization policy forbids.
type AuthorizationError struct {
	Actor   EmployeeID
	Action  string
	Request RequestID
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("employee %s may not %s request %s", e.Actor, e.Action, e.Request)
}

func (e *AuthorizationError) Unwrap() error { return ErrUnauthorized }

// ConflictError reports a lost optimistic-concurrency race on an entity.
type ConflictError struct {
	Kind string // "request" or "employee"
	ID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Kind, e.ID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input
// or insufficient permission, as opposed to an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether the operation might succeed if retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
