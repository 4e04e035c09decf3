// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamduylong/authgate/internal/platform/dberr"
)

// PostgresAccountStore implements [AccountStore] on top of pgx.
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountStore creates a PostgreSQL-backed account store.
func NewPostgresAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

const accountColumns = `id, username, email, password_hash, COALESCE(image, ''), role, created_at, updated_at`

// FindByID loads an account by primary key.
func (store *PostgresAccountStore) FindByID(ctx context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE id = $1`
	return store.queryOne(ctx, query, id)
}

// FindByEmail loads an account by email address.
func (store *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE email = $1`
	return store.queryOne(ctx, query, email)
}

// FindByUsername loads an account by username.
func (store *PostgresAccountStore) FindByUsername(ctx context.Context, name string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE username = $1`
	return store.queryOne(ctx, query, name)
}

// Create inserts a new account row.
func (store *PostgresAccountStore) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO users.account (id, username, email, password_hash, image, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`

	_, err := store.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Image,
		account.Role,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err)
	}

	return nil
}

// UpdateImageByEmail replaces the profile image of the account owning the
// given email address.
func (store *PostgresAccountStore) UpdateImageByEmail(ctx context.Context, email string, image string) error {
	query := `
		UPDATE users.account
		SET image = NULLIF($2, ''), updated_at = now()
		WHERE email = $1`

	tag, err := store.pool.Exec(ctx, query, email, image)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// queryOne runs a single-row account query and maps driver errors.
func (store *PostgresAccountStore) queryOne(ctx context.Context, query string, argument any) (*Account, error) {
	var account Account
	err := store.pool.QueryRow(ctx, query, argument).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Image,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return &account, nil
}
