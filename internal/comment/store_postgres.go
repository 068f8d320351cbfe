// Copyright (c) 2026 Tribuna. All rights reserved.

// PostgreSQL implementation of the comment storage layer.
package comment

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

// CreateForPublication inserts a comment after verifying its parent.
//
// # Concurrency
//
// The parent row is locked with FOR SHARE inside the same transaction as the
// insert. Multiple comment inserts on the same publication proceed in
// parallel (share locks are compatible with each other), but a moderation
// transaction banning the publication takes FOR UPDATE and therefore waits
// until in-flight inserts finish — and vice versa. The status recheck under
// the lock is what makes "no comment lands on a non-accepted publication"
// hold under concurrency.
func (repository *PostgresRepository) CreateForPublication(ctx context.Context, cmt *Comment) error {
	const lockQuery = `
		SELECT status
		FROM content.publication
		WHERE id = $1
		FOR SHARE`

	const insertQuery = `
		INSERT INTO content.comment (
			id, content, status, userid, publicationid, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_create_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	var parentStatus string
	err = transaction.QueryRow(ctx, lockQuery, cmt.PublicationID).Scan(&parentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundID("Publication", cmt.PublicationID)
		}
		return dberr.Wrap(err, "postgres_comment_repo_parent_lock_failed")
	}

	if parentStatus != "accepted" {
		return apperr.Conflict("Publication is not open for comments")
	}

	now := time.Now()
	if cmt.CreatedAt.IsZero() {
		cmt.CreatedAt = now
	}
	cmt.UpdatedAt = now

	_, err = transaction.Exec(ctx, insertQuery,
		cmt.ID,
		cmt.Content,
		cmt.Status,
		cmt.UserID,
		cmt.PublicationID,
		cmt.CreatedAt,
		cmt.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_create_failed")
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_create_commit_failed")
	}

	return nil
}

// FindByID retrieves a comment record by its unique ID.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	const query = `
		SELECT id, content, status, userid, publicationid, createdat, updatedat
		FROM content.comment
		WHERE id = $1`

	cmt := &Comment{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&cmt.ID,
		&cmt.Content,
		&cmt.Status,
		&cmt.UserID,
		&cmt.PublicationID,
		&cmt.CreatedAt,
		&cmt.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundID("Comment", id)
		}
		return nil, dberr.Wrap(err, "postgres_comment_repo_find_by_id_failed")
	}

	return cmt, nil
}

// ListForPublication retrieves a page of comments for a publication.
//
// Comments are ordered oldest first, which is the natural reading order for
// a discussion thread.
func (repository *PostgresRepository) ListForPublication(ctx context.Context, publicationID string, limit, offset int) ([]*Comment, int, error) {
	const countQuery = `
		SELECT count(*)
		FROM content.comment
		WHERE publicationid = $1`

	const listQuery = `
		SELECT id, content, status, userid, publicationid, createdat, updatedat
		FROM content.comment
		WHERE publicationid = $1
		ORDER BY createdat ASC
		LIMIT $2 OFFSET $3`

	var total int
	err := repository.pool.QueryRow(ctx, countQuery, publicationID).Scan(&total)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_comment_repo_count_failed")
	}

	rows, err := repository.pool.Query(ctx, listQuery, publicationID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_comment_repo_list_failed")
	}
	defer rows.Close()

	comments := make([]*Comment, 0, limit)
	for rows.Next() {
		cmt := &Comment{}
		err := rows.Scan(
			&cmt.ID,
			&cmt.Content,
			&cmt.Status,
			&cmt.UserID,
			&cmt.PublicationID,
			&cmt.CreatedAt,
			&cmt.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_comment_repo_scan_failed")
		}
		comments = append(comments, cmt)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_comment_repo_rows_failed")
	}

	return comments, total, nil
}

// Update persists changes to a comment's content.
func (repository *PostgresRepository) Update(ctx context.Context, cmt *Comment) error {
	const query = `
		UPDATE content.comment
		SET content = $2, updatedat = $3
		WHERE id = $1`

	cmt.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query, cmt.ID, cmt.Content, cmt.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundID("Comment", cmt.ID)
	}

	return nil
}

// DeleteCascade removes a comment and the reports filed against it.
//
// Children first: report history, then reports, then the comment row, all in
// one transaction.
func (repository *PostgresRepository) DeleteCascade(ctx context.Context, id string) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_delete_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	const deleteReportHistory = `
		DELETE FROM moderation.report_history
		WHERE reportid IN (
			SELECT id FROM moderation.report
			WHERE targetkind = 'comment' AND targetid = $1
		)`

	const deleteReports = `
		DELETE FROM moderation.report
		WHERE targetkind = 'comment' AND targetid = $1`

	if _, err := transaction.Exec(ctx, deleteReportHistory, id); err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_delete_report_history_failed")
	}

	if _, err := transaction.Exec(ctx, deleteReports, id); err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_delete_reports_failed")
	}

	tag, err := transaction.Exec(ctx, `DELETE FROM content.comment WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundID("Comment", id)
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "postgres_comment_repo_delete_commit_failed")
	}

	return nil
}
