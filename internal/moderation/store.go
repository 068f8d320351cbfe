// Copyright (c) 2026 Tribuna. All rights reserved.

package moderation

import "context"

// Repository defines the data access contract for reports.
//
// # Atomicity
//
// The interesting operations here are transactional by contract, not just by
// implementation detail: [File] must verify the target and insert atomically,
// and [Accept] must recount and enforce the ban in the same transaction as
// the status flip. Callers rely on those guarantees for correctness under
// concurrent reviews.
type Repository interface {
	// File atomically verifies the target and inserts the report.
	//
	// The target row is locked for the duration of the transaction, so the
	// "target is not banned" check cannot race with a concurrent ban.
	//
	// Returns [apperr.NotFound] if the target does not exist,
	// [apperr.Conflict] if the target is already banned, and
	// [apperr.Conflict] if the reporter already has a report against it.
	File(ctx context.Context, report *Report) error

	// FindByID returns the report with the given ID.
	//
	// Returns [apperr.NotFound] if the report does not exist.
	FindByID(ctx context.Context, id string) (*Report, error)

	// List returns a page of reports matching the filter, newest first,
	// together with the total number of matches.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Report, int, error)

	// Accept marks the report accepted, records the review in the history
	// table, recounts the accepted reports against the target, and bans the
	// target when the count reaches the threshold — all in one transaction,
	// with the target row held under an exclusive lock.
	//
	// Accepting an already-accepted report is a no-op; the outcome reports
	// AlreadyAccepted and the current count.
	//
	// Returns [apperr.NotFound] if the report or its target no longer exists.
	Accept(ctx context.Context, reportID, adminID string, threshold int) (*ReviewOutcome, error)

	// CountAccepted returns the number of accepted reports against a target.
	CountAccepted(ctx context.Context, target TargetRef) (int, error)

	// Delete removes a report and its review history in one transaction.
	// Deleting an accepted report never un-bans its target.
	//
	// Returns [apperr.NotFound] if the report does not exist.
	Delete(ctx context.Context, id string) error
}
