// Copyright (c) 2026 Tribuna. All rights reserved.

/*
Package moderation implements community reports and the automatic ban policy.

Users file reports against publications or comments. Administrators review
them; a report moves pending → accepted and never back. Each time a report is
accepted, the engine recounts the accepted reports against that target, and
once the count reaches the configured threshold the target is banned.

# State Machine

	pending ──► accepted

# Ban Policy

The ban decision is a pure function of the accepted-report count and the
threshold ([ShouldBan]); the transactional recount-and-enforce step lives in
the storage layer so the count can never race with a concurrent review.
*/
package moderation

import "time"

// # Report Targets

// TargetKind discriminates what kind of entity a report points at.
type TargetKind string

const (
	// TargetPublication marks a report filed against a publication.
	TargetPublication TargetKind = "publication"

	// TargetComment marks a report filed against a comment.
	TargetComment TargetKind = "comment"
)

// IsValid reports whether the value is one of the known target kinds.
func (k TargetKind) IsValid() bool {
	return k == TargetPublication || k == TargetComment
}

// TargetRef identifies the reported entity: a kind plus its ID.
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// # Report Lifecycle

// Status represents the review state of a report.
type Status string

const (
	// StatusPending is the initial state of every filed report.
	StatusPending Status = "pending"

	// StatusAccepted marks a report upheld by an administrator. Accepted
	// reports count towards the automatic ban threshold and are final.
	StatusAccepted Status = "accepted"
)

// IsValid reports whether the value is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusAccepted
}

// # Domain Entities

// Report represents a user complaint against a publication or comment.
type Report struct {
	ID         string    `json:"id"`
	Target     TargetRef `json:"target"`
	Reason     string    `json:"reason"`
	ReporterID string    `json:"reporter_id"`
	// AdminID is the reviewer who accepted the report; nil while pending.
	AdminID   *string   `json:"admin_id,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry records one review action on a report.
type HistoryEntry struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id"`
	Status    Status    `json:"status"`
	AdminID   *string   `json:"admin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter holds the parameters for a paginated report listing.
type Filter struct {
	// TargetKind narrows the listing to reports against one entity kind.
	TargetKind TargetKind
	// Status narrows the listing to a single review state.
	Status Status
}

// ReviewOutcome describes what happened when a report was accepted.
type ReviewOutcome struct {
	// Report is the post-review report.
	Report *Report `json:"report"`
	// AcceptedCount is the number of accepted reports against the target
	// after this review.
	AcceptedCount int `json:"accepted_count"`
	// TargetBanned is true when this review pushed the target over the
	// threshold and it was banned as part of the same transaction.
	TargetBanned bool `json:"target_banned"`
	// AlreadyAccepted is true when the report had been accepted before and
	// this review changed nothing.
	AlreadyAccepted bool `json:"-"`
}

// ShouldBan reports whether the accepted-report count has reached the ban
// threshold. The comparison is >= so raising the threshold in configuration
// never un-bans anything retroactively, it only moves the bar for future
// reviews.
func ShouldBan(acceptedCount, threshold int) bool {
	return acceptedCount >= threshold
}

// # Validation Bounds

const (
	ReasonMaxLen = 500
)

const (
	FieldReason = "reason"
	FieldStatus = "status"
	FieldKind   = "kind"
)
