package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("wishlist", 42),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("amount", "amount must be at least 1"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("you may not edit this wishlist"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("item already reserved"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Internal wraps ErrInternal",
			err:       Internal(errors.New("connection refused")),
			target:    ErrInternal,
			wantMatch: true,
		},
		{
			name:      "NotFound does not match ErrForbidden",
			err:       NotFound("item", 1),
			target:    ErrForbidden,
			wantMatch: false,
		},
		{
			name:      "wrapped NotFound still matches through fmt.Errorf",
			err:       fmt.Errorf("loading wishlist: %w", NotFound("wishlist", 7)),
			target:    ErrNotFound,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestInternalKeepsCauseInChain(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Internal(cause)

	if !errors.Is(err, cause) {
		t.Error("Internal() should keep the cause in the error chain for logging")
	}
	if err.Error() == cause.Error() {
		t.Error("Internal() must not expose the raw cause as its message")
	}
}

func TestNotFoundMessageIsUniform(t *testing.T) {
	// The message for a denied view and a truly missing row must be built
	// the same way, so callers can't tell the difference.
	missing := NotFound("wishlist", 99)
	denied := NotFound("wishlist", 99)
	if missing.Error() != denied.Error() {
		t.Errorf("messages differ: %q vs %q", missing.Error(), denied.Error())
	}
}
