// Copyright (c) 2026 Tribuna. All rights reserved.

/*
Package comment implements comments attached to publications.

A comment can only be created while its parent publication is accepted, and
its lifecycle is a two-state machine:

	open ──► banned

Banned is terminal: there is no way back to open. Comments are banned by the
moderation engine once enough accepted reports accumulate against them.
*/
package comment

import "time"

// Status represents the lifecycle state of a comment.
type Status string

const (
	// StatusOpen is the initial state of every comment.
	StatusOpen Status = "open"

	// StatusBanned is the terminal state applied by moderation.
	StatusBanned Status = "banned"
)

// IsValid reports whether the value is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusBanned
}

// Comment represents a user-authored comment on a publication.
type Comment struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Status        Status    `json:"status"`
	UserID        string    `json:"user_id"`
	PublicationID string    `json:"publication_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// # Validation Bounds

const (
	ContentMinLen = 1
	ContentMaxLen = 1000
)

const (
	FieldContent = "content"
)
