package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name"`
	JobTitle     string    `json:"job_title,omitempty"`
	Location     string    `json:"location,omitempty"`
	Experience   *int      `json:"experience,omitempty"`
	Skills       []string  `json:"skills"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the editable profile fields of a user.
type Profile struct {
	Name       string
	JobTitle   string
	Location   string
	Experience *int
	Skills     []string
}

// PendingSignup is an account awaiting email verification.
type PendingSignup struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Code         uuid.UUID `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the signup can no longer be verified at now.
func (p *PendingSignup) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
