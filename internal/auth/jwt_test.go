package auth

import (
	"strings"
	"testing"
	"time"
)

// newTestTokenService returns a TokenService with a fixed secret so tests
// are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", "HS256", time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_UnknownAlgorithm(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars", "RS256", time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject non-HMAC algorithm names")
	}
}

func TestNewTokenService_AllHMACVariants(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		if _, err := NewTokenService("this-is-16-chars", alg, time.Hour); err != nil {
			t.Errorf("NewTokenService(%s) unexpected error: %v", alg, err)
		}
	}
}

// =========================================================================
// ISSUE / DECODE TESTS
// =========================================================================

func TestIssue_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	email := "lion@safari.example"

	token, err := ts.Issue(email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Issue() token doesn't look like a JWT: %q", token)
	}

	got, err := ts.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != email {
		t.Errorf("Decode() subject = %q, want %q", got, email)
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	ts := newTestTokenService(t)
	if _, err := ts.Issue(""); err == nil {
		t.Fatal("Issue() should reject an empty subject email")
	}
}

func TestDecode_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.IssueWithTTL("lion@safari.example", time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL() error = %v", err)
	}

	// Move the service clock past expiry; the real wall clock never waits.
	ts.clock = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, err := ts.Decode(token); err == nil {
		t.Fatal("Decode() should reject an expired token")
	}
}

func TestDecode_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("lion@safari.example")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip one character of the signature.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'a' {
		tampered[last] = 'b'
	} else {
		tampered[last] = 'a'
	}

	if _, err := ts.Decode(string(tampered)); err == nil {
		t.Fatal("Decode() should reject a tampered token")
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret!!", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := ts.Issue("lion@safari.example")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Decode(token); err == nil {
		t.Fatal("Decode() should reject a token signed with a different secret")
	}
}

func TestDecode_Garbage(t *testing.T) {
	ts := newTestTokenService(t)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ts.Decode(tok); err == nil {
			t.Errorf("Decode(%q) should fail", tok)
		}
	}
}
