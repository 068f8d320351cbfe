// Copyright (c) 2026 Tribuna. All rights reserved.

// Business logic (Use Cases) for comments.
package comment

import (
	"context"
	"fmt"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/platform/validate"
	"github.com/tribuna-io/tribuna/pkg/pagination"
	"github.com/tribuna-io/tribuna/pkg/uuidv7"
)

// Service implements comment use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new comment [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// Create validates and attaches a new comment to a publication.
//
// # Business Rules
//   - The parent publication must be in the accepted state; commenting on
//     pending or banned content returns [apperr.Conflict]. The check runs
//     atomically with the insert at the storage layer.
//   - Content is required, 1 to 1000 characters.
//   - The initial status is always open.
func (service *Service) Create(ctx context.Context, actor *sec.AuthClaims, publicationID, content string) (*Comment, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldContent, content).
		MaxLen(FieldContent, content, ContentMaxLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	cmt := &Comment{
		ID:            uuidv7.New(),
		Content:       content,
		Status:        StatusOpen,
		UserID:        actor.UserID,
		PublicationID: publicationID,
	}

	if err := service.repository.CreateForPublication(ctx, cmt); err != nil {
		return nil, err
	}

	return cmt, nil
}

// ListForPublication returns a page of comments under one publication.
func (service *Service) ListForPublication(ctx context.Context, actor *sec.AuthClaims, publicationID string, params pagination.Params) ([]*Comment, pagination.Meta, error) {
	if actor == nil {
		return nil, pagination.Meta{}, apperr.Unauthorized("Authentication required")
	}

	comments, total, err := service.repository.ListForPublication(ctx, publicationID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("comment_service_list_failed: %w", err)
	}

	return comments, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Edit updates the content of a comment.
//
// # Business Rules
//   - Only the author or an administrator may edit ([sec.CheckOwnership]).
//   - Banned comments are frozen: editing one returns [apperr.Conflict].
func (service *Service) Edit(ctx context.Context, actor *sec.AuthClaims, id, content string) (*Comment, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldContent, content).
		MaxLen(FieldContent, content, ContentMaxLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	cmt, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sec.CheckOwnership(actor, cmt.UserID); err != nil {
		return nil, err
	}

	if cmt.Status == StatusBanned {
		return nil, apperr.Conflict("Banned comments cannot be edited")
	}

	cmt.Content = content
	if err := service.repository.Update(ctx, cmt); err != nil {
		return nil, fmt.Errorf("comment_service_edit_failed: %w", err)
	}

	return cmt, nil
}

// Remove deletes a comment together with the reports filed against it.
//
// Only the author or an administrator may delete ([sec.CheckOwnership]).
func (service *Service) Remove(ctx context.Context, actor *sec.AuthClaims, id string) error {
	cmt, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := sec.CheckOwnership(actor, cmt.UserID); err != nil {
		return err
	}

	if err := service.repository.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("comment_service_remove_failed: %w", err)
	}

	return nil
}
