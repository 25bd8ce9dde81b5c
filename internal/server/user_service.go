package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/types"
)

// UserService provides the account logic: signup with verification, login,
// profile and password changes.
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
	verifier       Verifier
	ttl            time.Duration
	now            func() time.Time
}

// NewUserService creates a new UserService. Pending signups expire after ttl.
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig, verifier Verifier, ttl time.Duration) *UserService {
	if verifier == nil {
		verifier = LogVerifier{}
	}
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
		verifier:       verifier,
		ttl:            ttl,
		now:            time.Now,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:         dbUser.ID,
		Name:       dbUser.Name,
		Email:      dbUser.Email,
		JobTitle:   dbUser.JobTitle,
		Location:   dbUser.Location,
		Experience: dbUser.Experience,
		Skills:     types.StringList(dbUser.Skills),
		CreatedAt:  dbUser.CreatedAt,
		UpdatedAt:  dbUser.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup records a pending account and sends its verification code. The
// account is only created by Verify.
func (s *UserService) Signup(ctx context.Context, req *types.SignupRequest) (*types.SignupResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.store.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}

	now := s.now()
	pending, err := s.store.GetPendingSignup(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending signup: %w", err)
	}
	if pending != nil && !pending.Expired(now) {
		return nil, &ErrVerificationPending{Email: email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	signup := &db.PendingSignup{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: passwordHash,
		Code:         uuid.New(),
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.store.SavePendingSignup(ctx, signup); err != nil {
		return nil, fmt.Errorf("failed to save pending signup: %w", err)
	}

	err = s.verifier.SendVerification(ctx, Verification{
		Email:     signup.Email,
		Name:      signup.Name,
		Code:      signup.Code.String(),
		ExpiresAt: signup.ExpiresAt,
	})
	if err != nil {
		// Without a delivered code the pending row would block retries until it expires.
		if delErr := s.store.DeletePendingSignup(ctx, email); delErr != nil {
			log.Printf("[auth] failed to remove undelivered signup for %s: %v", email, delErr)
		}
		return nil, fmt.Errorf("failed to send verification: %w", err)
	}

	log.Printf("[auth] signup pending for %s", email)
	return &types.SignupResponse{
		Email:     email,
		Message:   "Verification code sent",
		ExpiresAt: signup.ExpiresAt,
	}, nil
}

// Verify promotes the pending signup for req.Email to an account when the
// code matches and has not expired.
func (s *UserService) Verify(ctx context.Context, req *types.VerifyRequest) (*types.User, error) {
	email := normalizeEmail(req.Email)
	code, err := uuid.Parse(strings.TrimSpace(req.Code))
	if err != nil {
		return nil, &ErrInvalidVerification{}
	}

	pending, err := s.store.GetPendingSignup(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending signup: %w", err)
	}
	if pending == nil {
		return nil, &ErrInvalidVerification{}
	}
	if pending.Expired(s.now()) {
		if err := s.store.DeletePendingSignup(ctx, email); err != nil {
			log.Printf("[auth] failed to remove expired signup for %s: %v", email, err)
		}
		return nil, &ErrInvalidVerification{}
	}
	if subtle.ConstantTimeCompare([]byte(pending.Code.String()), []byte(code.String())) != 1 {
		return nil, &ErrInvalidVerification{}
	}

	dbUser, err := s.store.PromotePendingSignup(ctx, email)
	switch {
	case errors.Is(err, db.ErrDuplicate):
		return nil, &ErrEmailAlreadyExists{Email: email}
	case errors.Is(err, db.ErrNotFound):
		return nil, &ErrInvalidVerification{}
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[auth] account created for %s", email)
	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Unknown email and wrong password are indistinguishable to the caller.
	if dbUser == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// Profile returns the user's profile.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	dbUser, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// UpdateProfile replaces the editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	dbUser, err := s.store.UpdateProfile(ctx, userID, &db.Profile{
		Name:       strings.TrimSpace(req.Name),
		JobTitle:   strings.TrimSpace(req.JobTitle),
		Location:   strings.TrimSpace(req.Location),
		Experience: req.Experience,
		Skills:     req.Skills,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// UpdatePassword updates a user's password
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	dbUser, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, dbUser.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, newPasswordHash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrUserNotFound{UserID: userID}
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
