// Package types provides the request and response shapes shared by the job tracker API and its client.
package types

import (
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted account password.
const MinPasswordLength = 6

// SignupRequest starts account creation. The account only exists once the
// emailed verification code is confirmed.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SignupResponse acknowledges a pending signup.
type SignupResponse struct {
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyRequest confirms a pending signup with the code delivered to the user.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,uuid"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the profile returned by the API. It never carries the password hash.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	JobTitle   string     `json:"job_title,omitempty"`
	Location   string     `json:"location,omitempty"`
	Experience *int       `json:"experience,omitempty"`
	Skills     StringList `json:"skills,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// LoginResponse represents the login/verify response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest represents a password change.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest replaces the editable profile fields.
type UpdateProfileRequest struct {
	Name       string     `json:"name" validate:"required,max=255"`
	JobTitle   string     `json:"job_title" validate:"max=255"`
	Location   string     `json:"location" validate:"max=255"`
	Experience *int       `json:"experience" validate:"omitempty,min=0,max=80"`
	Skills     StringList `json:"skills" validate:"dive,required,max=100"`
}

// Validate validates the SignupRequest.
func (r *SignupRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the VerifyRequest.
func (r *VerifyRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the LoginRequest.
func (r *LoginRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the UpdatePasswordRequest.
func (r *UpdatePasswordRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the UpdateProfileRequest.
func (r *UpdateProfileRequest) Validate() error {
	return Validator().Struct(r)
}
