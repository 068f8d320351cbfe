// Copyright (c) 2026 Tribuna. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted access: moderation review, user administration
	RoleAdmin UserRole = "admin"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsAdmin reports whether the role grants administrative privileges.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// IsValid reports whether the value is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale leaves room for intermediate roles (e.g. moderator)
	switch r {
	case RoleAdmin:
		return 40
	case RoleUser:
		return 10
	default:
		return 0
	}
}
