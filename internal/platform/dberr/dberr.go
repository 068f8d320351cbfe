// Copyright (c) 2026 Tribuna. All rights reserved.

// Package dberr classifies low-level PostgreSQL errors into the application's
// [apperr.AppError] taxonomy.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
)

var (
	// ErrNotFound is the standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and converts it into a client-safe
// [apperr.AppError]. The action label is preserved in the internal cause for
// server-side logging.
//
// # Classification
//
//   - pgx.ErrNoRows            → NOT_FOUND
//   - SQLSTATE unique_violation → CONFLICT (duplicate key)
//   - anything else            → INTERNAL_ERROR (surfaced, never swallowed)
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.Conflict("Resource already exists")
	}

	return apperr.Internal(errorWithAction{action: action, cause: err})
}

// errorWithAction annotates a storage failure with the repository action that
// produced it, for log correlation.
type errorWithAction struct {
	action string
	cause  error
}

func (e errorWithAction) Error() string { return e.action + ": " + e.cause.Error() }
func (e errorWithAction) Unwrap() error { return e.cause }
