// Copyright (c) 2026 Tribuna. All rights reserved.

/*
Package publication implements the publication lifecycle state machine.

A publication starts pending, may be approved by an administrator, and may end
up banned — either by explicit moderation or automatically once enough
accepted reports accumulate against it (see the moderation package).

# State Machine

	pending ──► accepted ──► banned
	    └────────────────────► banned (report accumulation before approval)

Transitions only move forward. Banned is absorbing: no operation moves a
publication out of it.
*/
package publication

import "time"

// # Lifecycle States

// Status represents the lifecycle state of a publication.
type Status string

const (
	// StatusPending is the initial state of every submitted publication.
	StatusPending Status = "pending"

	// StatusAccepted marks a publication approved by an administrator.
	// Comments may only be created while the parent is in this state.
	StatusAccepted Status = "accepted"

	// StatusBanned is the terminal state. There is no transition out of it.
	StatusBanned Status = "banned"
)

// IsValid reports whether the value is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusBanned
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// target. Re-entering the current state is allowed (idempotent overwrite).
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}

	switch s {
	case StatusPending:
		return target == StatusAccepted || target == StatusBanned
	case StatusAccepted:
		return target == StatusBanned
	case StatusBanned:
		return false
	default:
		return false
	}
}

// # Domain Entities

// Publication represents a user-submitted piece of content.
type Publication struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HistoryEntry is a snapshot of a publication taken immediately before a
// mutating update, so every content or status change is auditable.
type HistoryEntry struct {
	ID            string    `json:"id"`
	PublicationID string    `json:"publication_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	ActorID       string    `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Snapshot captures the publication's current state as a history entry
// attributed to the given actor. The entry ID is assigned by storage.
func (p *Publication) Snapshot(actorID string) *HistoryEntry {
	return &HistoryEntry{
		PublicationID: p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Status:        p.Status,
		ActorID:       actorID,
	}
}

// Filter holds the parameters for a paginated publication listing.
type Filter struct {
	// Status narrows the listing to a single lifecycle state.
	Status Status
	// OwnerID narrows the listing to publications created by one user.
	OwnerID string
}

// # Validation Bounds

const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMaxLen = 2000
)

// Global field names for validation.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
)
