// Copyright (c) 2026 Tribuna. All rights reserved.

package comment

import "context"

// Repository defines the data access contract for comments.
//
// # Implementations
//
// The canonical implementation for Tribuna is PostgreSQL ([PostgresRepository]).
type Repository interface {
	// CreateForPublication atomically verifies the parent publication and
	// inserts the comment. The parent row is share-locked for the duration
	// of the transaction so a concurrent ban cannot slip in between the
	// status check and the insert.
	//
	// Returns [apperr.NotFound] if the publication does not exist, or
	// [apperr.Conflict] if it is not in the accepted state.
	CreateForPublication(ctx context.Context, cmt *Comment) error

	// FindByID returns the comment with the given ID.
	//
	// Returns [apperr.NotFound] if the comment does not exist.
	FindByID(ctx context.Context, id string) (*Comment, error)

	// ListForPublication returns a page of comments under one publication,
	// oldest first, together with the total count.
	ListForPublication(ctx context.Context, publicationID string, limit, offset int) ([]*Comment, int, error)

	// Update persists the comment's mutable content field.
	Update(ctx context.Context, cmt *Comment) error

	// DeleteCascade removes the comment together with the reports (and report
	// history) filed against it, all in one transaction.
	//
	// Returns [apperr.NotFound] if the comment does not exist.
	DeleteCascade(ctx context.Context, id string) error
}
