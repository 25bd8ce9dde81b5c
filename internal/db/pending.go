package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SavePendingSignup stores a signup awaiting verification, replacing any
// earlier pending signup for the same email.
func (db *DB) SavePendingSignup(ctx context.Context, p *PendingSignup) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pending_signups (email, name, password_hash, code, expires_at)
		 VALUES (LOWER($1), $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE
		 SET name = $2, password_hash = $3, code = $4, expires_at = $5, created_at = NOW()
		 RETURNING created_at`,
		p.Email, p.Name, p.PasswordHash, p.Code, p.ExpiresAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save pending signup: %w", err)
	}
	return nil
}

// GetPendingSignup retrieves the pending signup for email. Returns
// (nil, nil) when there is none.
func (db *DB) GetPendingSignup(ctx context.Context, email string) (*PendingSignup, error) {
	var p PendingSignup
	err := db.pool.QueryRow(ctx,
		`SELECT email, name, password_hash, code, expires_at, created_at
		 FROM pending_signups WHERE email = LOWER($1)`, email,
	).Scan(&p.Email, &p.Name, &p.PasswordHash, &p.Code, &p.ExpiresAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending signup: %w", err)
	}
	return &p, nil
}

// DeletePendingSignup removes the pending signup for email, if any.
func (db *DB) DeletePendingSignup(ctx context.Context, email string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM pending_signups WHERE email = LOWER($1)`, email); err != nil {
		return fmt.Errorf("failed to delete pending signup: %w", err)
	}
	return nil
}

// PromotePendingSignup turns the pending signup for email into an account
// and removes the pending row, atomically. Returns ErrNotFound when there is
// no pending signup and ErrDuplicate when the email already has an account.
func (db *DB) PromotePendingSignup(ctx context.Context, email string) (*User, error) {
	var user *User
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, name)
			 SELECT email, password_hash, name FROM pending_signups WHERE email = LOWER($1)
			 RETURNING `+userColumns, email))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: pending signup %s", ErrNotFound, email)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s", ErrDuplicate, email)
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM pending_signups WHERE email = LOWER($1)`, email); err != nil {
			return fmt.Errorf("failed to delete pending signup: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
