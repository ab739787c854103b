package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the session cookie. The value carries the scheme prefix
// ("Bearer <token>"), matching what an Authorization header would hold, so
// the same stripping logic serves both sources.
const CookieName = "Authorization"

const bearerPrefix = "Bearer "

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity we store in the context.
type contextKey string

const emailKey contextKey = "email"

// RequireAuth enforces authentication on protected routes.
//
// It resolves the caller's credential from the Authorization cookie or
// header, validates the token, and stores the subject email in the request
// context. A missing or invalid credential ends the chain with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := resolveIdentity(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthenticated","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the caller identity if a valid credential is present
// but never blocks the request. Anonymous reads on public routes stay
// anonymous; handlers check EmailFromContext to tell the difference.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if email, err := resolveIdentity(r, tokens); err == nil && email != "" {
				ctx := context.WithValue(r.Context(), emailKey, email)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EmailFromContext retrieves the authenticated caller's email.
// Returns ("", false) for anonymous requests.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

// resolveIdentity maps a raw inbound credential to a caller email.
//
// The credential is sourced from the Authorization cookie first, then the
// Authorization header; an optional "Bearer " prefix is stripped before
// decoding. Absence of both is the same failure as an invalid token:
// unauthenticated.
func resolveIdentity(r *http.Request, tokens *TokenService) (string, error) {
	raw, err := rawCredential(r)
	if err != nil {
		return "", err
	}
	return tokens.Decode(strings.TrimPrefix(raw, bearerPrefix))
}

func rawCredential(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	if header := r.Header.Get("Authorization"); header != "" {
		return header, nil
	}
	return "", http.ErrNoCookie
}
