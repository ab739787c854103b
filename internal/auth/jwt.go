// Package auth provides session tokens, identity middleware, and the
// Google OAuth exchange for the community API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User hits /auth/google/login → client is sent to Google's consent page
// 2. Google calls back /auth/google/callback with a code
// 3. Server exchanges the code for the user's email/name, upserts the user
// 4. Server issues a signed token, stores it in an HttpOnly cookie named
//    "Authorization" with the value "Bearer <token>"
// 5. On later calls, middleware reads the cookie (or header), validates the
//    token, and sets the caller's email in the request context
//
// The token is stateless — the signed payload carries everything the server
// needs (subject email + expiry), so no session storage is required. The
// signature makes it tamper-evident: flipping any byte invalidates it.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "safari-community"

// DefaultTokenTTL is the lifetime stamped on tokens issued via Issue.
const DefaultTokenTTL = time.Hour

var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// TokenService signs and verifies session tokens.
//
// The secret and algorithm are process-wide configuration, fixed at
// construction. Rotating either invalidates every outstanding token — there
// is no key versioning.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  func() time.Time // injectable for expiry tests
}

// NewTokenService creates a TokenService for the given secret and HMAC
// algorithm name (HS256, HS384, or HS512).
func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		clock:  time.Now,
	}, nil
}

// claims is the token payload. Subject carries the caller's email — the only
// identity fact the token asserts. The claim is never persisted; it exists
// only inside the signed token.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates a signed token asserting the given email, expiring after the
// service's configured TTL.
func (s *TokenService) Issue(email string) (string, error) {
	return s.IssueWithTTL(email, s.ttl)
}

// IssueWithTTL creates a signed token with a custom lifetime. Used by tests
// and anywhere a non-default expiry is needed.
func (s *TokenService) IssueWithTTL(email string, ttl time.Duration) (string, error) {
	if email == "" {
		return "", errors.New("auth: token subject email must not be empty")
	}

	now := s.clock()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(s.method, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Decode verifies a token string and returns the subject email.
//
// Every failure mode — bad signature, malformed structure, wrong algorithm,
// wrong issuer, expired — comes back as a plain error. Callers treat any
// error as "not authenticated"; nothing here is a crash.
func (s *TokenService) Decode(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens signed with anything but our configured HMAC
			// method — prevents algorithm confusion attacks.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
