// Copyright (c) 2026 Tribuna. All rights reserved.

// Business logic (Use Cases) for site settings.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/ctxutil"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/platform/validate"
	"github.com/tribuna-io/tribuna/pkg/pagination"
	"github.com/tribuna-io/tribuna/pkg/uuidv7"
)

// CacheTTL bounds how stale a cached setting can get if an invalidation is
// lost (e.g. Redis restarted between the DB write and the DEL).
const CacheTTL = 5 * time.Minute

// Service implements settings use cases with a read-through cache.
type Service struct {
	repository Repository
	cache      Cache
}

// NewService constructs a new settings [Service].
func NewService(repository Repository, cache Cache) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
	}
}

// Input holds the mutable fields of a setting.
type Input struct {
	Code        string
	Label       string
	Description string
	Data        json.RawMessage
}

// validateInput applies the shared field rules for create and update.
func validateInput(input Input) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldCode, input.Code).
		MinLen(FieldCode, input.Code, CodeMinLen).
		MaxLen(FieldCode, input.Code, CodeMaxLen).
		Required(FieldLabel, input.Label).
		MaxLen(FieldLabel, input.Label, LabelMaxLen).
		MaxLen(FieldDescription, input.Description, DescriptionMaxLen).
		Custom(FieldData, len(input.Data) > 0 && !json.Valid(input.Data), "Must be valid JSON")
	return validator.Err()
}

// Create persists a new setting. Administrator only.
func (service *Service) Create(ctx context.Context, actor *sec.AuthClaims, input Input) (*Setting, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := service.repository.FindByCode(ctx, input.Code); err == nil {
		return nil, apperr.Conflict("Setting code is already in use")
	}

	setting := &Setting{
		ID:          uuidv7.New(),
		Code:        input.Code,
		Label:       input.Label,
		Description: input.Description,
		Data:        input.Data,
	}

	if err := service.repository.Create(ctx, setting); err != nil {
		return nil, err
	}

	return setting, nil
}

// GetByCode returns a setting, serving repeated reads from the cache.
//
// # Cache Discipline
//
// Cache failures are downgraded to misses: a broken Redis slows settings
// reads down but never breaks them.
func (service *Service) GetByCode(ctx context.Context, code string) (*Setting, error) {
	if cached, err := service.cache.Get(ctx, code); err == nil {
		return cached, nil
	}

	setting, err := service.repository.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := service.cache.Set(ctx, setting, CacheTTL); err != nil {
		logger := ctxutil.GetLogger(ctx)
		logger.WarnContext(ctx, "settings_cache_set_failed",
			slog.String("code", code),
			slog.Any("error", err),
		)
	}

	return setting, nil
}

// List returns every setting. The full listing always reads the database:
// it is an admin-facing view where staleness would be confusing.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*Setting, pagination.Meta, error) {
	all, err := service.repository.List(ctx)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("settings_service_list_failed: %w", err)
	}

	// Settings are few; paginate in memory to keep the response shape
	// consistent with every other listing in the API.
	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	return all[start:end], pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Update modifies a setting and invalidates its cache entry. Administrator only.
func (service *Service) Update(ctx context.Context, actor *sec.AuthClaims, code string, input Input) (*Setting, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	input.Code = code
	if err := validateInput(input); err != nil {
		return nil, err
	}

	setting, err := service.repository.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	setting.Label = input.Label
	setting.Description = input.Description
	setting.Data = input.Data

	if err := service.repository.Update(ctx, setting); err != nil {
		return nil, err
	}

	service.invalidate(ctx, code)

	return setting, nil
}

// Delete removes a setting and invalidates its cache entry. Administrator only.
func (service *Service) Delete(ctx context.Context, actor *sec.AuthClaims, code string) error {
	if err := sec.RequireAdmin(actor); err != nil {
		return err
	}

	if err := service.repository.Delete(ctx, code); err != nil {
		return err
	}

	service.invalidate(ctx, code)

	return nil
}

// invalidate drops the cache entry, logging instead of failing on error.
// The TTL caps how long a lost invalidation can serve stale data.
func (service *Service) invalidate(ctx context.Context, code string) {
	if err := service.cache.Invalidate(ctx, code); err != nil {
		logger := ctxutil.GetLogger(ctx)
		logger.WarnContext(ctx, "settings_cache_invalidate_failed",
			slog.String("code", code),
			slog.Any("error", err),
		)
	}
}
