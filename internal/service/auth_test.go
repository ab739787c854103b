package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/auth"
)

// stubExchanger stands in for the Google provider.
type stubExchanger struct {
	user *auth.GoogleUser
	err  error
}

func (s *stubExchanger) AuthURL(state string) string { return "https://provider.example/auth?state=" + state }

func (s *stubExchanger) Exchange(_ context.Context, _ string) (*auth.GoogleUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newTestAuthService(t *testing.T, exchanger IdentityExchanger) (*AuthService, *mockUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	users := newMockUserRepo()
	svc := NewAuthService(users, tokens, auth.NewPasswordServiceForTests(), exchanger, testLogger())
	return svc, users
}

// =========================================================================
// GOOGLE LOGIN TESTS
// =========================================================================

func TestLoginWithGoogle_FirstLoginCreatesUser(t *testing.T) {
	svc, users := newTestAuthService(t, &stubExchanger{
		user: &auth.GoogleUser{Email: "lion@safari.example", Name: "Lion"},
	})

	result, err := svc.LoginWithGoogle(context.Background(), "one-time-code")
	if err != nil {
		t.Fatalf("LoginWithGoogle() error = %v", err)
	}
	if result.Token == "" {
		t.Error("LoginWithGoogle() issued no token")
	}
	if result.User.AuthProvider != "google" {
		t.Errorf("AuthProvider = %q, want google", result.User.AuthProvider)
	}

	stored, err := users.GetByEmail(context.Background(), "lion@safari.example")
	if err != nil {
		t.Fatalf("user was not persisted: %v", err)
	}
	if stored.Username != "Lion" {
		t.Errorf("Username = %q, want Lion", stored.Username)
	}
}

func TestLoginWithGoogle_RepeatLoginKeepsID(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{
		user: &auth.GoogleUser{Email: "lion@safari.example", Name: "Lion"},
	})
	ctx := context.Background()

	first, err := svc.LoginWithGoogle(ctx, "code-1")
	if err != nil {
		t.Fatalf("first LoginWithGoogle() error = %v", err)
	}
	second, err := svc.LoginWithGoogle(ctx, "code-2")
	if err != nil {
		t.Fatalf("second LoginWithGoogle() error = %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Errorf("repeat login minted new id %q, want %q", second.User.ID, first.User.ID)
	}
}

func TestLoginWithGoogle_ExchangeFailure(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{err: errors.New("provider down")})

	_, err := svc.LoginWithGoogle(context.Background(), "bad-code")
	if !errors.Is(err, apperror.ErrExchange) {
		t.Errorf("LoginWithGoogle() error = %v, want ErrExchange", err)
	}
}

// =========================================================================
// LOCAL ACCOUNT TESTS
// =========================================================================

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "x", "longenough"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Register(bad email) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Register(ctx, "lion@safari.example", "x", "short"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Register(short password) error = %v, want ErrValidation", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "lion@safari.example", "lion", "password1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := svc.Register(ctx, "lion@safari.example", "lion2", "password2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Register(duplicate) error = %v, want ErrConflict", err)
	}
}

func TestLoginWithPassword(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "lion@safari.example", "lion", "password1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.LoginWithPassword(ctx, "lion@safari.example", "password1")
	if err != nil {
		t.Fatalf("LoginWithPassword() error = %v", err)
	}
	if result.Token == "" {
		t.Error("LoginWithPassword() issued no token")
	}

	// Wrong password and unknown email are the same failure.
	if _, err := svc.LoginWithPassword(ctx, "lion@safari.example", "wrong"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("wrong password error = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.LoginWithPassword(ctx, "nobody@safari.example", "password1"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("unknown email error = %v, want ErrUnauthenticated", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{})
	ctx := context.Background()

	if _, err := svc.CurrentUser(ctx, ""); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("CurrentUser(\"\") error = %v, want ErrUnauthenticated", err)
	}

	if _, err := svc.Register(ctx, "lion@safari.example", "lion", "password1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	user, err := svc.CurrentUser(ctx, "lion@safari.example")
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Email != "lion@safari.example" {
		t.Errorf("CurrentUser() email = %q", user.Email)
	}

	// A removed account is NotFound, not Unauthenticated.
	if _, err := svc.CurrentUser(ctx, "ghost@safari.example"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CurrentUser(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLoginURL(t *testing.T) {
	svc, _ := newTestAuthService(t, &stubExchanger{})
	url := svc.LoginURL("csrf-state")
	if url != "https://provider.example/auth?state=csrf-state" {
		t.Errorf("LoginURL() = %q", url)
	}
}
