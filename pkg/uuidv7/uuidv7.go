// Copyright (c) 2026 Tribuna. All rights reserved.

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is the primary key type across all Tribuna tables. Time-sortable IDs keep
// PostgreSQL b-tree indexes append-friendly, avoiding the fragmentation that
// random UUIDv4 keys cause.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable, which is an
// unrecoverable system-level failure.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
