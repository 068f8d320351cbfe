// Copyright (c) 2026 Tribuna. All rights reserved.

// PostgreSQL implementation of the user account storage layer.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/dberr"
)

// PostgresUserRepository implements the [UserRepository] interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record into the users.account table.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - user: The user entity to persist.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, role, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_create_failed")
	}

	return nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, role, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	return repository.scanOne(ctx, query, id)
}

// FindByEmail retrieves a user record by their unique email address.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, role, createdat, updatedat
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	return repository.scanOne(ctx, query, email)
}

// FindByUsername retrieves a user record by their unique username.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, role, createdat, updatedat
		FROM users.account
		WHERE username = $1 AND deletedat IS NULL`

	return repository.scanOne(ctx, query, username)
}

// scanOne runs a single-row account query and maps no-rows to NotFound.
func (repository *PostgresUserRepository) scanOne(ctx context.Context, query, argument string) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_user_repo_find_failed")
	}

	return user, nil
}

// List retrieves a page of accounts, newest first.
func (repository *PostgresUserRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*User, int, error) {
	const countQuery = `
		SELECT count(*)
		FROM users.account
		WHERE deletedat IS NULL
		  AND ($1 = '' OR role = $1)`

	const listQuery = `
		SELECT id, username, email, passwordhash, role, createdat, updatedat
		FROM users.account
		WHERE deletedat IS NULL
		  AND ($1 = '' OR role = $1)
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	var total int
	err := repository.pool.QueryRow(ctx, countQuery, string(filter.Role)).Scan(&total)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_user_repo_count_failed")
	}

	rows, err := repository.pool.Query(ctx, listQuery, string(filter.Role), limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_user_repo_list_failed")
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user := &User{}
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_user_repo_scan_failed")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_user_repo_rows_failed")
	}

	return users, total, nil
}

// Update persists changes to an account's mutable fields.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET username = $2, email = $3, role = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_update_password_failed")
	}

	return nil
}

// SoftDelete marks a user account as deleted using their ID.
func (repository *PostgresUserRepository) SoftDelete(ctx context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = $2 WHERE id = $1 AND deletedat IS NULL"

	tag, err := repository.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_soft_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
