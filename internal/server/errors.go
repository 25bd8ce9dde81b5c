package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/db"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return "Email already in use"
}

// ErrVerificationPending indicates an unexpired signup already awaits
// verification for the email.
type ErrVerificationPending struct {
	Email string
}

func (e *ErrVerificationPending) Error() string {
	return "Verification already sent"
}

// ErrInvalidVerification indicates an unknown, expired or mismatched code.
type ErrInvalidVerification struct{}

func (e *ErrInvalidVerification) Error() string {
	return "invalid or expired verification code"
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrNotFound indicates a job or contact the caller does not own or that
// does not exist.
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrDuplicateContact indicates the caller already has a contact with the
// email.
type ErrDuplicateContact struct {
	Email string
}

func (e *ErrDuplicateContact) Error() string {
	return fmt.Sprintf("a contact with email %s already exists", e.Email)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		pending      *ErrVerificationPending
		invalidCode  *ErrInvalidVerification
		invalidCreds *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userNotFound *ErrUserNotFound
		notFound     *ErrNotFound
		dupContact   *ErrDuplicateContact
		validation   *ErrValidation
	)
	switch {
	case errors.As(err, &emailExists), errors.As(err, &pending), errors.As(err, &dupContact):
		return http.StatusConflict
	case errors.As(err, &invalidCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalidCode):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, analytics.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to send to clients. Internal errors
// are replaced by a generic message.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusInternalServerError:
		return "Internal server error"
	case http.StatusServiceUnavailable:
		return "Data temporarily unavailable"
	default:
		return err.Error()
	}
}
