package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"NotFound", NotFound("post", "abc"), ErrNotFound},
		{"ValidationFailed", ValidationFailed("name", "required"), ErrValidation},
		{"Conflict", Conflict("duplicate"), ErrConflict},
		{"Forbidden", Forbidden("not yours"), ErrForbidden},
		{"Unauthenticated", Unauthenticated("log in"), ErrUnauthenticated},
		{"InvalidID", InvalidID("post", "zzz"), ErrInvalidID},
		{"Exchange", Exchange("provider down"), ErrExchange},
	}

	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("%s: errors.Is() = false, want true", tc.name)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(NotFound("post", "abc"), ErrValidation) {
		t.Error("NotFound should not match ErrValidation")
	}
	if errors.Is(Unauthenticated("log in"), ErrForbidden) {
		t.Error("Unauthenticated should not match ErrForbidden")
	}
}

func TestWrappingPreservesKind(t *testing.T) {
	inner := NotFound("category", "abc123")
	wrapped := fmt.Errorf("service/category: looking up fallback: %w", inner)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is() should see through fmt.Errorf wrapping")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() should recover the AppError through wrapping")
	}
	if appErr.Message == "" {
		t.Error("recovered AppError lost its message")
	}
}

func TestValidationCarriesField(t *testing.T) {
	var appErr *AppError
	if !errors.As(ValidationFailed("title", "too long"), &appErr) {
		t.Fatal("errors.As() failed on a fresh AppError")
	}
	if appErr.Field != "title" {
		t.Errorf("Field = %q, want %q", appErr.Field, "title")
	}
}
