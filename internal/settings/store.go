// Copyright (c) 2026 Tribuna. All rights reserved.

package settings

import (
	"context"
	"time"
)

// Repository defines the data access contract for site settings.
type Repository interface {
	// Create persists a brand-new setting.
	//
	// Returns [apperr.Conflict] if the code is already in use.
	Create(ctx context.Context, setting *Setting) error

	// FindByCode returns the setting with the given code.
	//
	// Returns [apperr.NotFound] if no setting carries the code.
	FindByCode(ctx context.Context, code string) (*Setting, error)

	// List returns all settings ordered by code. Settings are few by nature,
	// so the listing is not paginated.
	List(ctx context.Context) ([]*Setting, error)

	// Update persists changes to the setting's mutable fields.
	Update(ctx context.Context, setting *Setting) error

	// Delete removes a setting by code.
	//
	// Returns [apperr.NotFound] if the setting does not exist.
	Delete(ctx context.Context, code string) error
}

// Cache defines the volatile read-cache contract for settings.
//
// A cache failure must never fail a request; implementations return errors
// for observability, and callers treat them as misses.
type Cache interface {
	// Get returns the cached setting for a code, or [apperr.NotFound] on miss.
	Get(ctx context.Context, code string) (*Setting, error)

	// Set stores a setting under its code for the given TTL.
	Set(ctx context.Context, setting *Setting, ttl time.Duration) error

	// Invalidate drops the cached entry for a code.
	Invalidate(ctx context.Context, code string) error
}
