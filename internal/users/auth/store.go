// Copyright (c) 2026 Tribuna. All rights reserved.

package auth

import "context"

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently.
//
// # Implementations
//
// The canonical implementation for Tribuna is PostgreSQL ([PostgresUserRepository]).
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account.
	//
	// Returns [apperr.Conflict] if a unique constraint (email/username) fails.
	Create(ctx context.Context, user *User) error

	// List returns a page of accounts matching the filter, together with the
	// total number of matches.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*User, int, error)

	// Update persists changes to the account's mutable fields (username,
	// email, role). Passwords must be updated via [UpdatePassword].
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the user's password hash.
	// This is separate from [Update] to prevent accidental overwrites
	// during unrelated profile updates.
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// SoftDelete marks the account as deleted without removing the row.
	// This preserves relational integrity (publications and comments left
	// by the user keep a valid author reference).
	SoftDelete(ctx context.Context, id string) error
}

// SessionRepository defines the contract for volatile refresh-token sessions.
//
// # Storage
//
// Sessions live in Redis keyed by the refresh token's hash, with the TTL set
// to the token lifetime. Expired sessions vanish on their own.
type SessionRepository interface {
	// Create stores a new session under its token hash.
	Create(ctx context.Context, session *Session) error

	// FindByTokenHash returns the live session matching the token hash.
	//
	// Returns [apperr.NotFound] if the session is invalid or expired.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke removes a single session, identified by its token hash.
	// Usually triggered during explicit user logout from a specific device.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAll removes every active session belonging to the userID.
	// Crucial for security event responses (password change, account
	// deletion, role demotion).
	RevokeAll(ctx context.Context, userID string) error
}
