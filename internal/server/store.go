package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/types"
)

// UserStore persists accounts and signups awaiting verification.
type UserStore interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, p *db.Profile) (*db.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error

	SavePendingSignup(ctx context.Context, p *db.PendingSignup) error
	GetPendingSignup(ctx context.Context, email string) (*db.PendingSignup, error)
	DeletePendingSignup(ctx context.Context, email string) error
	PromotePendingSignup(ctx context.Context, email string) (*db.User, error)
}

// JobStore persists job applications scoped to their owner.
type JobStore interface {
	CreateJob(ctx context.Context, userID uuid.UUID, req *types.JobRequest) (*types.Job, error)
	CreateJobs(ctx context.Context, userID uuid.UUID, reqs []types.JobRequest) ([]types.Job, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID) ([]types.Job, error)
	UpdateJob(ctx context.Context, userID, jobID uuid.UUID, req *types.JobRequest) (*types.Job, error)
	DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error
}

// ContactStore persists recruiter and referral contacts scoped to their owner.
type ContactStore interface {
	CreateContact(ctx context.Context, userID uuid.UUID, req *types.ContactRequest) (*types.Contact, error)
	GetContact(ctx context.Context, userID, contactID uuid.UUID) (*types.Contact, error)
	ListContacts(ctx context.Context, userID uuid.UUID) ([]types.Contact, error)
	UpdateContact(ctx context.Context, userID, contactID uuid.UUID, req *types.ContactRequest) (*types.Contact, error)
	DeleteContact(ctx context.Context, userID, contactID uuid.UUID) error
}

// Store is everything the API needs from persistence. *db.DB implements it.
type Store interface {
	UserStore
	JobStore
	ContactStore
	analytics.Source
	Ping(ctx context.Context) error
}

var _ Store = (*db.DB)(nil)
