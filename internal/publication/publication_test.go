// Copyright (c) 2026 Tribuna. All rights reserved.

package publication_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tribuna-io/tribuna/internal/publication"
)

/*
TestStatus_CanTransitionTo exhaustively checks the forward-only lifecycle.
*/
func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    publication.Status
		to      publication.Status
		allowed bool
	}{
		{"pending_to_accepted", publication.StatusPending, publication.StatusAccepted, true},
		{"pending_to_banned", publication.StatusPending, publication.StatusBanned, true},
		{"accepted_to_banned", publication.StatusAccepted, publication.StatusBanned, true},

		// Banned is absorbing: nothing leaves it.
		{"banned_to_pending", publication.StatusBanned, publication.StatusPending, false},
		{"banned_to_accepted", publication.StatusBanned, publication.StatusAccepted, false},

		// No transition ever moves backwards.
		{"accepted_to_pending", publication.StatusAccepted, publication.StatusPending, false},

		// Idempotent re-entry of the current state is fine.
		{"pending_to_pending", publication.StatusPending, publication.StatusPending, true},
		{"accepted_to_accepted", publication.StatusAccepted, publication.StatusAccepted, true},
		{"banned_to_banned", publication.StatusBanned, publication.StatusBanned, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

/*
TestStatus_IsValid rejects anything outside the three lifecycle states.
*/
func TestStatus_IsValid(t *testing.T) {
	assert.True(t, publication.StatusPending.IsValid())
	assert.True(t, publication.StatusAccepted.IsValid())
	assert.True(t, publication.StatusBanned.IsValid())
	assert.False(t, publication.Status("rejected").IsValid())
	assert.False(t, publication.Status("").IsValid())
}

/*
TestPublication_Snapshot captures the pre-mutation state for the audit trail.
*/
func TestPublication_Snapshot(t *testing.T) {
	pub := &publication.Publication{
		ID:          "p1",
		Title:       "Original title",
		Description: "Original description",
		Status:      publication.StatusPending,
		UserID:      "u1",
	}

	snapshot := pub.Snapshot("admin-1")

	assert.Equal(t, "p1", snapshot.PublicationID)
	assert.Equal(t, "Original title", snapshot.Title)
	assert.Equal(t, publication.StatusPending, snapshot.Status)
	assert.Equal(t, "admin-1", snapshot.ActorID)

	// Mutating the publication afterwards must not change the snapshot.
	pub.Title = "Edited title"
	assert.Equal(t, "Original title", snapshot.Title)
}
