// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Identity comes from Google OAuth or from a local email/password signup.
// Email is the unique external identifier; we still generate our own
// internal string ID (xid) so primary keys don't depend on a third party.
//
// PasswordHash is only set for local accounts and is never serialized.
type User struct {
	ID           string    `json:"id"           db:"id"`
	Email        string    `json:"email"        db:"email"`
	Username     string    `json:"username"     db:"username"`      // display name
	AuthProvider string    `json:"authProvider" db:"auth_provider"` // "google" or "local"
	PasswordHash string    `json:"-"            db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}
