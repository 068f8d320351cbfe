// Copyright (c) 2026 Tribuna. All rights reserved.

// Business logic (Use Cases) for the publication lifecycle.
//
// # Architecture
//
// The service orchestrates domain entities and talks to storage through the
// [Repository] interface. It is technology-agnostic: no HTTP, no SQL.
package publication

import (
	"context"
	"fmt"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/platform/validate"
	"github.com/tribuna-io/tribuna/pkg/pagination"
	"github.com/tribuna-io/tribuna/pkg/uuidv7"
)

// Service implements publication use cases.
//
// # Permission Model
//
// Every mutating method takes the acting user's claims and enforces the
// ownership policy itself ([sec.CheckOwnership] / [sec.RequireAdmin]), so the
// rules hold regardless of which transport invoked the call.
type Service struct {
	repository Repository
}

// NewService constructs a new publication [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// SubmitInput holds the data required to create a publication.
type SubmitInput struct {
	Title       string
	Description string
}

// Submit validates and persists a new publication owned by the actor.
//
// # Business Rules
//   - Title is required, 3 to 100 characters.
//   - Description is required, at most 2000 characters.
//   - The initial status is always pending; callers cannot choose it.
//
// # Returns
//   - The newly created [*Publication].
//   - [apperr.ValidationError] if the input violates field rules.
func (service *Service) Submit(ctx context.Context, actor *sec.AuthClaims, input SubmitInput) (*Publication, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, input.Title).
		MinLen(FieldTitle, input.Title, TitleMinLen).
		MaxLen(FieldTitle, input.Title, TitleMaxLen).
		Required(FieldDescription, input.Description).
		MaxLen(FieldDescription, input.Description, DescriptionMaxLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	pub := &Publication{
		ID:          uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Title:       input.Title,
		Description: input.Description,
		Status:      StatusPending, // Rule: every publication starts pending.
		UserID:      actor.UserID,
	}

	if err := service.repository.Create(ctx, pub); err != nil {
		return nil, fmt.Errorf("publication_service_submit_failed: %w", err)
	}

	return pub, nil
}

// List returns a page of publications visible to the actor.
//
// # Visibility
//
//   - Administrators see everything and may filter by any status.
//   - Regular users see accepted publications plus their own, regardless
//     of status. A status filter still applies within that visible set.
func (service *Service) List(ctx context.Context, actor *sec.AuthClaims, filter Filter, params pagination.Params) ([]*Publication, pagination.Meta, error) {
	if actor == nil {
		return nil, pagination.Meta{}, apperr.Unauthorized("Authentication required")
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pagination.Meta{}, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldStatus, Message: "Unknown status"})
	}

	if !sec.UserRole(actor.Role).IsAdmin() {
		// Non-admins browsing the general feed only see approved content.
		// When they explicitly ask for their own publications, any status
		// they own is fine.
		if filter.OwnerID == "" || filter.OwnerID != actor.UserID {
			if filter.Status == "" {
				filter.Status = StatusAccepted
			} else if filter.Status != StatusAccepted {
				// Pending/banned listings of other people's content are
				// an admin-only view.
				filter.OwnerID = actor.UserID
			}
		}
	}

	publications, total, err := service.repository.List(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("publication_service_list_failed: %w", err)
	}

	return publications, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Get returns a single publication if the actor is allowed to see it.
//
// Pending and banned publications are only visible to their owner and to
// administrators; everyone else receives [apperr.NotFound], so the existence
// of hidden content does not leak.
func (service *Service) Get(ctx context.Context, actor *sec.AuthClaims, id string) (*Publication, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	pub, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if pub.Status != StatusAccepted {
		if err := sec.CheckOwnership(actor, pub.UserID); err != nil {
			return nil, apperr.NotFoundID("Publication", id)
		}
	}

	return pub, nil
}

// EditInput holds the mutable fields of a publication.
type EditInput struct {
	Title       string
	Description string
}

// Edit updates the content fields of a publication.
//
// # Business Rules
//   - Only the owner or an administrator may edit ([sec.CheckOwnership]).
//   - Editing never changes the status; the lifecycle is driven exclusively
//     by [Approve] and by the moderation engine.
//   - The pre-edit state is archived to the history table.
func (service *Service) Edit(ctx context.Context, actor *sec.AuthClaims, id string, input EditInput) (*Publication, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, input.Title).
		MinLen(FieldTitle, input.Title, TitleMinLen).
		MaxLen(FieldTitle, input.Title, TitleMaxLen).
		Required(FieldDescription, input.Description).
		MaxLen(FieldDescription, input.Description, DescriptionMaxLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	pub, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sec.CheckOwnership(actor, pub.UserID); err != nil {
		return nil, err
	}

	snapshot := pub.Snapshot(actor.UserID)
	pub.Title = input.Title
	pub.Description = input.Description

	if err := service.repository.Update(ctx, pub, snapshot); err != nil {
		return nil, fmt.Errorf("publication_service_edit_failed: %w", err)
	}

	return pub, nil
}

// Approve transitions a publication from pending to accepted.
//
// # Business Rules
//   - Administrator only ([sec.RequireAdmin]).
//   - Approving an already-accepted publication is a no-op (idempotent).
//   - Banned publications can never be approved: banned is absorbing.
//
// # Returns
//   - [apperr.Forbidden] if the actor is not an administrator.
//   - [apperr.Conflict] if the lifecycle forbids the transition.
func (service *Service) Approve(ctx context.Context, actor *sec.AuthClaims, id string) (*Publication, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	pub, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if pub.Status == StatusAccepted {
		return pub, nil
	}

	if !pub.Status.CanTransitionTo(StatusAccepted) {
		return nil, apperr.Conflict(fmt.Sprintf("Publication cannot move from %s to %s", pub.Status, StatusAccepted))
	}

	snapshot := pub.Snapshot(actor.UserID)
	pub.Status = StatusAccepted

	if err := service.repository.Update(ctx, pub, snapshot); err != nil {
		return nil, fmt.Errorf("publication_service_approve_failed: %w", err)
	}

	return pub, nil
}

// Remove deletes a publication and all dependent records.
//
// # Business Rules
//   - Only the owner or an administrator may delete ([sec.CheckOwnership]).
//   - The delete cascades: comments, reports against those comments, and
//     reports against the publication all disappear atomically.
func (service *Service) Remove(ctx context.Context, actor *sec.AuthClaims, id string) error {
	pub, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := sec.CheckOwnership(actor, pub.UserID); err != nil {
		return err
	}

	if err := service.repository.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("publication_service_remove_failed: %w", err)
	}

	return nil
}

// GetHistory returns the audit trail of a publication.
//
// The history includes content edits and every status change, including bans
// applied by the moderation engine. Owner or administrator only.
func (service *Service) GetHistory(ctx context.Context, actor *sec.AuthClaims, id string) ([]*HistoryEntry, error) {
	pub, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sec.CheckOwnership(actor, pub.UserID); err != nil {
		return nil, err
	}

	entries, err := service.repository.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("publication_service_history_failed: %w", err)
	}

	return entries, nil
}
