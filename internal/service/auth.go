// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and shape responses; services enforce the rules
// (validation, ownership, provisioning, uniqueness); repositories read and
// write the store. Services return domain errors from internal/apperror —
// never HTTP status codes — and the handler layer translates them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/auth"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/repository"
)

// IdentityExchanger is the boundary contract for the external identity
// provider. GoogleProvider implements it in production; tests stub it.
type IdentityExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

// AuthService orchestrates login: the OAuth callback, the local
// email/password path, and current-user lookup.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	exchanger IdentityExchanger
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	exchanger IdentityExchanger,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		exchanger: exchanger,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginURL returns the identity provider's consent page URL for the given
// CSRF state.
func (s *AuthService) LoginURL(state string) string {
	return s.exchanger.AuthURL(state)
}

// LoginWithGoogle completes the OAuth callback: exchange the one-time code
// for the caller's verified email and display name, upsert the user (create
// on first login, refresh username/provider after), and issue a session
// token for that email.
//
// Any failure at the provider hop — token exchange or profile fetch — is
// classified as a single exchange failure; the caller learns nothing more.
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*AuthResult, error) {
	gu, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("google exchange failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: %w", apperror.Exchange("identity provider exchange failed"))
	}

	user := &model.User{
		Email:        gu.Email,
		Username:     gu.Name,
		AuthProvider: "google",
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", gu.Email, err)
	}

	s.logger.Info("user authenticated via google",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return s.issueFor(user)
}

// Register creates a local account with a bcrypt-hashed password and logs
// it in. A duplicate email is a conflict.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		AuthProvider: "local",
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("email", user.Email))

	return s.issueFor(user)
}

// LoginWithPassword authenticates a local account. A wrong email and a
// wrong password are deliberately the same failure.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("incorrect email or password")
		}
		return nil, err
	}

	if user.PasswordHash == "" || !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperror.Unauthenticated("incorrect email or password")
	}

	s.logger.Info("user authenticated via password", slog.String("userID", user.ID))

	return s.issueFor(user)
}

// CurrentUser returns the full user record for an authenticated email.
// A missing row (account removed between token issue and use) is NotFound —
// deliberately distinct from Unauthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperror.Unauthenticated("no authenticated caller")
	}
	return s.users.GetByEmail(ctx, email)
}

func (s *AuthService) issueFor(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", user.Email, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
