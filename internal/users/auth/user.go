// Copyright (c) 2026 Tribuna. All rights reserved.

/*
Package auth implements identity and access management for Tribuna.

It covers the full account lifecycle (registration, login, refresh-token
rotation, profile management) plus the administrator-facing account
operations. The role model is intentionally flat — user and admin — and the
system's own administrator accounts are protected from mutation through the
admin management endpoints.
*/
package auth

import (
	"time"

	"github.com/tribuna-io/tribuna/internal/platform/sec"
)

// User represents a registered member of the Tribuna platform.
//
// # Rules
//   - Username is unique, 3 to 50 characters.
//   - Email is unique and validated.
//   - PasswordHash is generated via Bcrypt exclusively by the auth [Service].
//   - Role is either user or admin; there are no intermediate tiers.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsAdmin reports whether the account holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// Session represents an active refresh-token session.
//
// # Security Concept
//
// Access tokens (JWT) are stateless and cannot be revoked before they expire.
// Tribuna pairs short-lived JWTs with long-lived sessions kept in Redis under
// the hash of the refresh token. When the JWT expires, the client trades the
// refresh token for a new pair; revoking the session logs the device out.
// Redis TTLs make expiry enforcement automatic — no cleanup worker needed.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter holds the parameters for a paginated account listing.
type Filter struct {
	// Role narrows the listing to one role.
	Role sec.UserRole
}

// # Validation Bounds

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 6
)

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)
