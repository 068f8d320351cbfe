// Copyright (c) 2026 Tribuna. All rights reserved.

// PostgreSQL implementation of the settings storage layer.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/dberr"
)

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new setting record into the site.setting table.
func (repository *PostgresRepository) Create(ctx context.Context, setting *Setting) error {
	const query = `
		INSERT INTO site.setting (
			id, code, label, description, data, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		setting.ID,
		setting.Code,
		setting.Label,
		setting.Description,
		setting.Data,
		setting.CreatedAt,
		setting.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_settings_repo_create_failed")
	}

	return nil
}

// FindByCode retrieves a setting record by its unique code.
func (repository *PostgresRepository) FindByCode(ctx context.Context, code string) (*Setting, error) {
	const query = `
		SELECT id, code, label, description, data, createdat, updatedat
		FROM site.setting
		WHERE code = $1`

	setting := &Setting{}
	err := repository.pool.QueryRow(ctx, query, code).Scan(
		&setting.ID,
		&setting.Code,
		&setting.Label,
		&setting.Description,
		&setting.Data,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Setting")
		}
		return nil, dberr.Wrap(err, "postgres_settings_repo_find_failed")
	}

	return setting, nil
}

// List retrieves every setting ordered by code.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Setting, error) {
	const query = `
		SELECT id, code, label, description, data, createdat, updatedat
		FROM site.setting
		ORDER BY code ASC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_settings_repo_list_failed")
	}
	defer rows.Close()

	result := []*Setting{}
	for rows.Next() {
		setting := &Setting{}
		err := rows.Scan(
			&setting.ID,
			&setting.Code,
			&setting.Label,
			&setting.Description,
			&setting.Data,
			&setting.CreatedAt,
			&setting.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "postgres_settings_repo_scan_failed")
		}
		result = append(result, setting)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "postgres_settings_repo_rows_failed")
	}

	return result, nil
}

// Update persists changes to a setting's mutable fields. The code itself is
// immutable: it is the public identifier clients build against.
func (repository *PostgresRepository) Update(ctx context.Context, setting *Setting) error {
	const query = `
		UPDATE site.setting
		SET label = $2, description = $3, data = $4, updatedat = $5
		WHERE code = $1`

	setting.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		setting.Code,
		setting.Label,
		setting.Description,
		setting.Data,
		setting.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_settings_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Setting")
	}

	return nil
}

// Delete removes a setting by its code.
func (repository *PostgresRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM site.setting WHERE code = $1`

	tag, err := repository.pool.Exec(ctx, query, code)
	if err != nil {
		return dberr.Wrap(err, "postgres_settings_repo_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Setting")
	}

	return nil
}
