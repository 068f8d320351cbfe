// Copyright (c) 2026 Tribuna. All rights reserved.

package sec

import (
	"github.com/tribuna-io/tribuna/internal/platform/apperr"
)

// # Permission Policy
//
// Every mutating operation on owned content funnels through this single
// predicate instead of scattering role-string checks across services.

// CheckOwnership authorizes an actor to mutate a resource owned by ownerID.
//
// It succeeds when the actor is the resource owner or holds the admin role,
// and fails with [apperr.Forbidden] otherwise. The check is pure: callers must
// short-circuit on failure before touching storage.
func CheckOwnership(actor *AuthClaims, ownerID string) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if actor.UserID == ownerID {
		return nil
	}

	if UserRole(actor.Role).IsAdmin() {
		return nil
	}

	return apperr.Forbidden("You are not allowed to modify this resource")
}

// RequireAdmin authorizes status-changing operations that are reserved for
// administrators regardless of resource ownership.
func RequireAdmin(actor *AuthClaims) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if !UserRole(actor.Role).IsAdmin() {
		return apperr.Forbidden("Administrator role required")
	}

	return nil
}
