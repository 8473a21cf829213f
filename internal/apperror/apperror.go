// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes with errors.Is. Nothing below the handler ever thinks in HTTP terms.
//
// The sentinel errors are the "kinds"; *AppError carries the human-readable
// message and wraps the sentinel so errors.Is works through any number of
// fmt.Errorf("%w") layers on top.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "does not exist" and "exists but this viewer
	// may not see it". Collapsing the two is deliberate — a 404 for a hidden
	// wishlist must be byte-identical to a 404 for a wishlist that was never
	// created, or the ids of hidden lists could be enumerated.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks bad input: amount below 1, unknown visibility
	// value, mismatched password confirmation, and the like.
	ErrValidation = errors.New("validation error")

	// ErrForbidden marks an action on an entity the viewer CAN see but may
	// not modify (or, for reservations, an owner trying to reserve their
	// own item).
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a uniqueness collision, e.g. a second reservation
	// by the same user on the same item, or a duplicate email.
	ErrConflict = errors.New("conflict")

	// ErrInternal marks a store or transport failure. The original cause is
	// kept in the chain for logs but never reaches the client.
	ErrInternal = errors.New("internal error")
)

// AppError pairs a kind (one of the sentinels above) with a message fit for
// the API response, and optionally the input field at fault.
type AppError struct {
	Err     error  // one of the sentinel kinds
	Message string // safe to show to the caller
	Field   string // optional: input field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound returns the uniform not-found error for a resource.
// Callers must use the same resource wording whether the entity is missing
// or merely invisible to the viewer.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// ValidationFailed returns an input validation error for the given field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Conflict returns an AppError for a uniqueness collision.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Internal wraps a store/transport failure. The cause stays in the error
// chain (for logging); the client-visible message is generic on purpose.
func Internal(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Message: "an internal error occurred",
	}
}
