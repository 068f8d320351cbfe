// Copyright (c) 2026 Tribuna. All rights reserved.

package auth

import "time"

// # Token Lifetimes

const (
	// AccessTokenTTL keeps the stateless JWT short-lived to reduce the
	// impact window if one leaks.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL bounds how long a device stays signed in without
	// re-entering credentials.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenBytes is the entropy of the opaque refresh token.
	RefreshTokenBytes = 32
)
