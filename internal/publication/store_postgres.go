// Copyright (c) 2026 Tribuna. All rights reserved.

// PostgreSQL implementation of the publication storage layer.
//
// # Architecture
//
// Repositories are strictly separated from domain logic. They implement the
// domain-defined [Repository] interface using the [pgxpool.Pool] connection
// manager and map storage errors into the [apperr.AppError] taxonomy.
package publication

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/dberr"
	"github.com/tribuna-io/tribuna/pkg/uuidv7"
)

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new publication record into the content.publication table.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - pub: The publication entity to persist.
func (repository *PostgresRepository) Create(ctx context.Context, pub *Publication) error {
	const query = `
		INSERT INTO content.publication (
			id, title, description, status, userid, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if pub.CreatedAt.IsZero() {
		pub.CreatedAt = now
	}
	pub.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		pub.ID,
		pub.Title,
		pub.Description,
		pub.Status,
		pub.UserID,
		pub.CreatedAt,
		pub.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_create_failed")
	}

	return nil
}

// FindByID retrieves a publication record by its unique ID.
//
// # Returns
//
// Returns [*Publication] if found, or [apperr.NotFound] if no row exists.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Publication, error) {
	const query = `
		SELECT id, title, description, status, userid, createdat, updatedat
		FROM content.publication
		WHERE id = $1`

	pub := &Publication{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&pub.ID,
		&pub.Title,
		&pub.Description,
		&pub.Status,
		&pub.UserID,
		&pub.CreatedAt,
		&pub.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundID("Publication", id)
		}
		return nil, dberr.Wrap(err, "postgres_publication_repo_find_by_id_failed")
	}

	return pub, nil
}

// List retrieves a page of publications matching the filter, newest first.
//
// The filter parameters are optional: zero values mean "no restriction".
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Publication, int, error) {
	// Both queries share the same WHERE clause driven by nullable parameters,
	// so the count always agrees with the page contents.
	const countQuery = `
		SELECT count(*)
		FROM content.publication
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR userid = $2::uuid)`

	const listQuery = `
		SELECT id, title, description, status, userid, createdat, updatedat
		FROM content.publication
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR userid = $2::uuid)
		ORDER BY createdat DESC
		LIMIT $3 OFFSET $4`

	var total int
	err := repository.pool.QueryRow(ctx, countQuery, string(filter.Status), filter.OwnerID).Scan(&total)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_publication_repo_count_failed")
	}

	rows, err := repository.pool.Query(ctx, listQuery, string(filter.Status), filter.OwnerID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_publication_repo_list_failed")
	}
	defer rows.Close()

	publications := make([]*Publication, 0, limit)
	for rows.Next() {
		pub := &Publication{}
		err := rows.Scan(
			&pub.ID,
			&pub.Title,
			&pub.Description,
			&pub.Status,
			&pub.UserID,
			&pub.CreatedAt,
			&pub.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_publication_repo_scan_failed")
		}
		publications = append(publications, pub)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_publication_repo_rows_failed")
	}

	return publications, total, nil
}

// Update persists new field values and archives the pre-update snapshot.
//
// # Atomicity
//
// The row update and the history insert run in one transaction: a publication
// change without its audit record must never be observable.
func (repository *PostgresRepository) Update(ctx context.Context, pub *Publication, snapshot *HistoryEntry) error {
	const updateQuery = `
		UPDATE content.publication
		SET title = $2, description = $3, status = $4, updatedat = $5
		WHERE id = $1`

	const historyQuery = `
		INSERT INTO content.publication_history (
			id, publicationid, title, description, status, actorid, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_update_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	pub.UpdatedAt = time.Now()
	tag, err := transaction.Exec(ctx, updateQuery,
		pub.ID,
		pub.Title,
		pub.Description,
		pub.Status,
		pub.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundID("Publication", pub.ID)
	}

	_, err = transaction.Exec(ctx, historyQuery,
		uuidv7.New(),
		snapshot.PublicationID,
		snapshot.Title,
		snapshot.Description,
		snapshot.Status,
		snapshot.ActorID,
		pub.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_history_failed")
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_update_commit_failed")
	}

	return nil
}

// DeleteCascade removes a publication and all dependent rows in one transaction.
//
// # Ordering
//
// Children are always deleted before their parents, so a failed transaction
// can never leave orphaned comments or dangling reports behind:
//
//  1. Reports filed against the publication's comments (and their history).
//  2. The comments themselves.
//  3. Reports filed against the publication (and their history).
//  4. The publication's own history.
//  5. The publication row.
func (repository *PostgresRepository) DeleteCascade(ctx context.Context, id string) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_delete_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	steps := []struct {
		action string
		query  string
	}{
		{
			action: "postgres_publication_repo_delete_comment_report_history_failed",
			query: `
				DELETE FROM moderation.report_history
				WHERE reportid IN (
					SELECT id FROM moderation.report
					WHERE targetkind = 'comment'
					  AND targetid IN (SELECT id FROM content.comment WHERE publicationid = $1)
				)`,
		},
		{
			action: "postgres_publication_repo_delete_comment_reports_failed",
			query: `
				DELETE FROM moderation.report
				WHERE targetkind = 'comment'
				  AND targetid IN (SELECT id FROM content.comment WHERE publicationid = $1)`,
		},
		{
			action: "postgres_publication_repo_delete_comments_failed",
			query:  `DELETE FROM content.comment WHERE publicationid = $1`,
		},
		{
			action: "postgres_publication_repo_delete_report_history_failed",
			query: `
				DELETE FROM moderation.report_history
				WHERE reportid IN (
					SELECT id FROM moderation.report
					WHERE targetkind = 'publication' AND targetid = $1
				)`,
		},
		{
			action: "postgres_publication_repo_delete_reports_failed",
			query:  `DELETE FROM moderation.report WHERE targetkind = 'publication' AND targetid = $1`,
		},
		{
			action: "postgres_publication_repo_delete_history_failed",
			query:  `DELETE FROM content.publication_history WHERE publicationid = $1`,
		},
	}

	for _, step := range steps {
		if _, err := transaction.Exec(ctx, step.query, id); err != nil {
			return dberr.Wrap(err, step.action)
		}
	}

	tag, err := transaction.Exec(ctx, `DELETE FROM content.publication WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundID("Publication", id)
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "postgres_publication_repo_delete_commit_failed")
	}

	return nil
}

// History retrieves the audit trail for a publication, newest first.
func (repository *PostgresRepository) History(ctx context.Context, publicationID string) ([]*HistoryEntry, error) {
	const query = `
		SELECT id, publicationid, title, description, status, actorid, createdat
		FROM content.publication_history
		WHERE publicationid = $1
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(ctx, query, publicationID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_publication_repo_history_list_failed")
	}
	defer rows.Close()

	entries := []*HistoryEntry{}
	for rows.Next() {
		entry := &HistoryEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.PublicationID,
			&entry.Title,
			&entry.Description,
			&entry.Status,
			&entry.ActorID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "postgres_publication_repo_history_scan_failed")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "postgres_publication_repo_history_rows_failed")
	}

	return entries, nil
}
