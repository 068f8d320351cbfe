// Copyright (c) 2026 Tribuna. All rights reserved.

package publication

import "context"

// Repository defines the data access contract for publications.
//
// # Review Process
//
// This interface is placed in a separate file from publication.go so entity
// changes and storage-contract changes can be reviewed independently.
//
// # Implementations
//
// The canonical implementation for Tribuna is PostgreSQL ([PostgresRepository]).
type Repository interface {
	// Create persists a brand-new publication.
	Create(ctx context.Context, pub *Publication) error

	// FindByID returns the publication with the given ID.
	//
	// Returns [apperr.NotFound] if the publication does not exist.
	FindByID(ctx context.Context, id string) (*Publication, error)

	// List returns a page of publications matching the filter, together with
	// the total number of matches.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Publication, int, error)

	// Update persists new field values for the publication and records the
	// pre-update snapshot in the history table. Both writes happen in one
	// transaction so the audit trail can never miss a change.
	Update(ctx context.Context, pub *Publication, snapshot *HistoryEntry) error

	// DeleteCascade removes the publication together with everything hanging
	// off it: its comments, the reports filed against those comments, the
	// reports filed against the publication itself, and its history. All
	// deletes run in one transaction, children first.
	//
	// Returns [apperr.NotFound] if the publication does not exist.
	DeleteCascade(ctx context.Context, id string) error

	// History returns the audit trail for a publication, newest first.
	History(ctx context.Context, publicationID string) ([]*HistoryEntry, error)
}
