// Copyright (c) 2026 Tribuna. All rights reserved.

// PostgreSQL implementation of the moderation storage layer.
//
// # Concurrency
//
// All report mutations serialize on the target row. Filing takes FOR SHARE
// (concurrent files may proceed together), while review takes FOR UPDATE
// (reviews against the same target run strictly one after another). Locks are
// always acquired report-row-first, target-row-second, and report rows are
// distinct per transaction, so the ordering cannot deadlock.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/dberr"
	"github.com/tribuna-io/tribuna/pkg/pointer"
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

// targetTable maps a target kind to the table holding that entity.
func targetTable(kind TargetKind) (string, error) {
	switch kind {
	case TargetPublication:
		return "content.publication", nil
	case TargetComment:
		return "content.comment", nil
	default:
		return "", apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldKind, Message: "Unknown target kind"})
	}
}

// File verifies the target and inserts the report in one transaction.
//
// # Flow
//
//  1. Share-lock the target row; missing row → NotFound.
//  2. Reject banned targets (reporting them is pointless and would inflate
//     counts against content that is already gone from circulation).
//  3. Reject duplicates by the same reporter.
//  4. Insert. A unique index on (reporterid, targetkind, targetid) backstops
//     the duplicate check against concurrent double-submits.
func (repository *PostgresRepository) File(ctx context.Context, report *Report) error {
	table, err := targetTable(report.Target.Kind)
	if err != nil {
		return err
	}

	lockQuery := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1 FOR SHARE`, table)

	const duplicateQuery = `
		SELECT EXISTS (
			SELECT 1 FROM moderation.report
			WHERE reporterid = $1 AND targetkind = $2 AND targetid = $3
		)`

	const insertQuery = `
		INSERT INTO moderation.report (
			id, targetkind, targetid, reason, reporterid, status, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "postgres_report_repo_file_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	var targetStatus string
	err = transaction.QueryRow(ctx, lockQuery, report.Target.ID).Scan(&targetStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundID(targetResourceName(report.Target.Kind), report.Target.ID)
		}
		return dberr.Wrap(err, "postgres_report_repo_target_lock_failed")
	}

	if targetStatus == "banned" {
		return apperr.Conflict("Target is already banned")
	}

	var duplicate bool
	err = transaction.QueryRow(ctx, duplicateQuery, report.ReporterID, report.Target.Kind, report.Target.ID).Scan(&duplicate)
	if err != nil {
		return dberr.Wrap(err, "postgres_report_repo_duplicate_check_failed")
	}
	if duplicate {
		return apperr.Conflict("You have already reported this content")
	}

	now := time.Now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	_, err = transaction.Exec(ctx, insertQuery,
		report.ID,
		report.Target.Kind,
		report.Target.ID,
		report.Reason,
		report.ReporterID,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_report_repo_file_failed")
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "postgres_report_repo_file_commit_failed")
	}

	return nil
}

// FindByID retrieves a report record by its unique ID.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Report, error) {
	const query = `
		SELECT id, targetkind, targetid, reason, reporterid, adminid, status, createdat, updatedat
		FROM moderation.report
		WHERE id = $1`

	report := &Report{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.Target.Kind,
		&report.Target.ID,
		&report.Reason,
		&report.ReporterID,
		&report.AdminID,
		&report.Status,
		&report.CreatedAt,
		&report.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundID("Report", id)
		}
		return nil, dberr.Wrap(err, "postgres_report_repo_find_by_id_failed")
	}

	return report, nil
}

// List retrieves a page of reports matching the filter, newest first.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Report, int, error) {
	const countQuery = `
		SELECT count(*)
		FROM moderation.report
		WHERE ($1 = '' OR targetkind = $1)
		  AND ($2 = '' OR status = $2)`

	const listQuery = `
		SELECT id, targetkind, targetid, reason, reporterid, adminid, status, createdat, updatedat
		FROM moderation.report
		WHERE ($1 = '' OR targetkind = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY createdat DESC
		LIMIT $3 OFFSET $4`

	var total int
	err := repository.pool.QueryRow(ctx, countQuery, string(filter.TargetKind), string(filter.Status)).Scan(&total)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_report_repo_count_failed")
	}

	rows, err := repository.pool.Query(ctx, listQuery, string(filter.TargetKind), string(filter.Status), limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_report_repo_list_failed")
	}
	defer rows.Close()

	reports := make([]*Report, 0, limit)
	for rows.Next() {
		report := &Report{}
		err := rows.Scan(
			&report.ID,
			&report.Target.Kind,
			&report.Target.ID,
			&report.Reason,
			&report.ReporterID,
			&report.AdminID,
			&report.Status,
			&report.CreatedAt,
			&report.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_report_repo_scan_failed")
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_report_repo_rows_failed")
	}

	return reports, total, nil
}

// Accept flips the report to accepted and enforces the ban threshold.
//
// # Flow (single transaction)
//
//  1. Lock the report row FOR UPDATE; missing row → NotFound.
//  2. Lock the target row FOR UPDATE. Every review of the same target
//     serializes here, so two concurrent reviews can never both read the
//     pre-review count.
//  3. If the report is already accepted, return the current count unchanged.
//  4. Flip the report, stamp the reviewer, append the review to the history.
//  5. Recount accepted reports against the target (the fresh flip included).
//  6. If [ShouldBan] and the target is not yet banned, ban it. Publication
//     bans also archive the pre-ban snapshot to the publication history.
func (repository *PostgresRepository) Accept(ctx context.Context, reportID, adminID string, threshold int) (*ReviewOutcome, error) {
	const reportLockQuery = `
		SELECT id, targetkind, targetid, reason, reporterid, adminid, status, createdat, updatedat
		FROM moderation.report
		WHERE id = $1
		FOR UPDATE`

	const acceptQuery = `
		UPDATE moderation.report
		SET status = $2, adminid = $3, updatedat = $4
		WHERE id = $1`

	const historyQuery = `
		INSERT INTO moderation.report_history (
			id, reportid, status, adminid, createdat
		) VALUES ($1, $2, $3, $4, $5)`

	const countAcceptedQuery = `
		SELECT count(*)
		FROM moderation.report
		WHERE targetkind = $1 AND targetid = $2 AND status = 'accepted'`

	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	report := &Report{}
	err = transaction.QueryRow(ctx, reportLockQuery, reportID).Scan(
		&report.ID,
		&report.Target.Kind,
		&report.Target.ID,
		&report.Reason,
		&report.ReporterID,
		&report.AdminID,
		&report.Status,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundID("Report", reportID)
		}
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_lock_failed")
	}

	table, err := targetTable(report.Target.Kind)
	if err != nil {
		return nil, err
	}

	// Publications carry an audit snapshot on ban; comments only flip status.
	var targetStatus, targetTitle, targetDescription string
	if report.Target.Kind == TargetPublication {
		lockQuery := fmt.Sprintf(`SELECT status, title, description FROM %s WHERE id = $1 FOR UPDATE`, table)
		err = transaction.QueryRow(ctx, lockQuery, report.Target.ID).Scan(&targetStatus, &targetTitle, &targetDescription)
	} else {
		lockQuery := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1 FOR UPDATE`, table)
		err = transaction.QueryRow(ctx, lockQuery, report.Target.ID).Scan(&targetStatus)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundID(targetResourceName(report.Target.Kind), report.Target.ID)
		}
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_target_lock_failed")
	}

	if report.Status == StatusAccepted {
		var count int
		if err := transaction.QueryRow(ctx, countAcceptedQuery, report.Target.Kind, report.Target.ID).Scan(&count); err != nil {
			return nil, dberr.Wrap(err, "postgres_report_repo_accept_recount_failed")
		}
		return &ReviewOutcome{
			Report:          report,
			AcceptedCount:   count,
			TargetBanned:    false,
			AlreadyAccepted: true,
		}, nil
	}

	now := time.Now()
	report.Status = StatusAccepted
	report.AdminID = pointer.To(adminID)
	report.UpdatedAt = now

	if _, err := transaction.Exec(ctx, acceptQuery, report.ID, report.Status, adminID, now); err != nil {
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_failed")
	}

	if _, err := transaction.Exec(ctx, historyQuery, uuidv7.New(), report.ID, report.Status, adminID, now); err != nil {
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_history_failed")
	}

	var acceptedCount int
	if err := transaction.QueryRow(ctx, countAcceptedQuery, report.Target.Kind, report.Target.ID).Scan(&acceptedCount); err != nil {
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_count_failed")
	}

	targetBanned := false
	if ShouldBan(acceptedCount, threshold) && targetStatus != "banned" {
		banQuery := fmt.Sprintf(`UPDATE %s SET status = 'banned', updatedat = $2 WHERE id = $1`, table)
		if _, err := transaction.Exec(ctx, banQuery, report.Target.ID, now); err != nil {
			return nil, dberr.Wrap(err, "postgres_report_repo_ban_failed")
		}

		if report.Target.Kind == TargetPublication {
			const snapshotQuery = `
				INSERT INTO content.publication_history (
					id, publicationid, title, description, status, actorid, createdat
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`

			_, err := transaction.Exec(ctx, snapshotQuery,
				uuidv7.New(),
				report.Target.ID,
				targetTitle,
				targetDescription,
				targetStatus,
				adminID,
				now,
			)
			if err != nil {
				return nil, dberr.Wrap(err, "postgres_report_repo_ban_history_failed")
			}
		}

		targetBanned = true
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "postgres_report_repo_accept_commit_failed")
	}

	return &ReviewOutcome{
		Report:        report,
		AcceptedCount: acceptedCount,
		TargetBanned:  targetBanned,
	}, nil
}

// CountAccepted returns the number of accepted reports against a target.
func (repository *PostgresRepository) CountAccepted(ctx context.Context, target TargetRef) (int, error) {
	const query = `
		SELECT count(*)
		FROM moderation.report
		WHERE targetkind = $1 AND targetid = $2 AND status = 'accepted'`

	var count int
	err := repository.pool.QueryRow(ctx, query, target.Kind, target.ID).Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_report_repo_count_accepted_failed")
	}

	return count, nil
}

// Delete removes a report and its review history.
//
// The target's status is left untouched: bans are never rolled back by
// deleting the reports that caused them.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "postgres_report_repo_delete_begin_failed")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	if _, err := transaction.Exec(ctx, `DELETE FROM moderation.report_history WHERE reportid = $1`, id); err != nil {
		return dberr.Wrap(err, "postgres_report_repo_delete_history_failed")
	}

	tag, err := transaction.Exec(ctx, `DELETE FROM moderation.report WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_report_repo_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundID("Report", id)
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "postgres_report_repo_delete_commit_failed")
	}

	return nil
}

// targetResourceName maps a target kind to its client-facing resource name.
func targetResourceName(kind TargetKind) string {
	if kind == TargetComment {
		return "Comment"
	}
	return "Publication"
}
