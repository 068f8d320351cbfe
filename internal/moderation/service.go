// Copyright (c) 2026 Tribuna. All rights reserved.

// Business logic (Use Cases) for the moderation engine.
package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/ctxutil"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/platform/validate"
	"github.com/tribuna-io/tribuna/pkg/pagination"
	"github.com/tribuna-io/tribuna/pkg/uuidv7"
)

// Service implements moderation use cases.
//
// # Review Process
//
// This service decides who may file and review reports and owns the ban
// threshold. The transactional recount-and-ban mechanics live behind the
// [Repository] contract; changes to either side must be reviewed together.
type Service struct {
	repository Repository
	// banThreshold is the number of accepted reports at which a target is
	// automatically banned. Sourced from MODERATION_BAN_THRESHOLD.
	banThreshold int
}

// NewService constructs a new moderation [Service].
func NewService(repository Repository, banThreshold int) *Service {
	return &Service{
		repository:   repository,
		banThreshold: banThreshold,
	}
}

// FileInput holds the data required to file a report.
type FileInput struct {
	Target TargetRef
	Reason string
}

// File validates and persists a new report against a publication or comment.
//
// # Business Rules
//   - Any authenticated user may file, including against their own content.
//   - One report per (reporter, target): duplicates are a [apperr.Conflict].
//   - Already-banned targets cannot be reported ([apperr.Conflict]).
//   - Every report starts pending; filing alone never changes the target.
func (service *Service) File(ctx context.Context, actor *sec.AuthClaims, input FileInput) (*Report, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	validator.
		Custom(FieldKind, !input.Target.Kind.IsValid(), "Must be publication or comment").
		Required("target_id", input.Target.ID).
		MaxLen(FieldReason, input.Reason, ReasonMaxLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:         uuidv7.New(),
		Target:     input.Target,
		Reason:     input.Reason,
		ReporterID: actor.UserID,
		Status:     StatusPending,
	}

	if err := service.repository.File(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// Review applies an administrator's decision to a report.
//
// # Business Rules
//   - Administrator only ([sec.RequireAdmin]).
//   - The only legal decision is accepted: reports move forward or not at
//     all. Any other status is a [apperr.ValidationError].
//   - Re-reviewing an accepted report is a no-op: the count is not bumped
//     and the target is not touched.
//   - When the accepted count reaches the threshold, the target is banned in
//     the same transaction as the review.
func (service *Service) Review(ctx context.Context, actor *sec.AuthClaims, reportID string, decision Status) (*ReviewOutcome, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if decision != StatusAccepted {
		return nil, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldStatus, Message: "Only 'accepted' is a valid review decision"})
	}

	outcome, err := service.repository.Accept(ctx, reportID, actor.UserID, service.banThreshold)
	if err != nil {
		return nil, err
	}

	if outcome.TargetBanned {
		logger := ctxutil.GetLogger(ctx)
		logger.InfoContext(ctx, "moderation_target_banned",
			slog.String("target_kind", string(outcome.Report.Target.Kind)),
			slog.String("target_id", outcome.Report.Target.ID),
			slog.Int("accepted_count", outcome.AcceptedCount),
			slog.Int("threshold", service.banThreshold),
			slog.String("admin_id", actor.UserID),
		)
	}

	return outcome, nil
}

// List returns a page of reports for the moderation queue.
//
// Administrator only: report contents identify reporters, which is not
// information regular users should see.
func (service *Service) List(ctx context.Context, actor *sec.AuthClaims, filter Filter, params pagination.Params) ([]*Report, pagination.Meta, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, pagination.Meta{}, err
	}

	if filter.TargetKind != "" && !filter.TargetKind.IsValid() {
		return nil, pagination.Meta{}, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldKind, Message: "Must be publication or comment"})
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pagination.Meta{}, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldStatus, Message: "Unknown status"})
	}

	reports, total, err := service.repository.List(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("moderation_service_list_failed: %w", err)
	}

	return reports, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Get returns a single report. Administrator only.
func (service *Service) Get(ctx context.Context, actor *sec.AuthClaims, id string) (*Report, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	return service.repository.FindByID(ctx, id)
}

// Remove deletes a report from the queue.
//
// # Business Rules
//   - Administrator only ([sec.RequireAdmin]).
//   - Removing an accepted report never reverses a ban it contributed to:
//     lifecycle transitions are forward-only even when the evidence behind
//     them is withdrawn.
func (service *Service) Remove(ctx context.Context, actor *sec.AuthClaims, id string) error {
	if err := sec.RequireAdmin(actor); err != nil {
		return err
	}

	if err := service.repository.Delete(ctx, id); err != nil {
		return err
	}

	return nil
}

// AcceptedCount returns the number of accepted reports against a target.
//
// The count is always recomputed from the report rows rather than read from
// a stored counter, so it can never drift from the truth.
func (service *Service) AcceptedCount(ctx context.Context, actor *sec.AuthClaims, target TargetRef) (int, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return 0, err
	}

	if !target.Kind.IsValid() {
		return 0, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldKind, Message: "Must be publication or comment"})
	}

	count, err := service.repository.CountAccepted(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("moderation_service_count_failed: %w", err)
	}

	return count, nil
}
