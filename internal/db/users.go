package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, name, job_title, location, experience, skills, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var jobTitle, location *string
	var skills []byte
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &jobTitle, &location,
		&u.Experience, &skills, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.JobTitle = deref(jobTitle)
	u.Location = deref(location)
	u.Skills = decodeStringArray(skills)
	return &u, nil
}

// GetUser retrieves a user by ID. Returns (nil, nil) when no user exists.
func (db *DB) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively. Returns
// (nil, nil) when no user exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// CheckEmailExists reports whether an account uses email.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateProfile replaces the editable profile fields and returns the
// updated user. Returns (nil, nil) when no user exists.
func (db *DB) UpdateProfile(ctx context.Context, userID uuid.UUID, p *Profile) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = $2, job_title = $3, location = $4, experience = $5, skills = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, p.Name, nullString(p.JobTitle), nullString(p.Location), p.Experience, encodeStringArray(p.Skills),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// UpdatePassword stores a new password hash.
func (db *DB) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// DeleteUser removes an account together with its jobs and contacts.
func (db *DB) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}
