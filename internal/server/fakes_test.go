package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/types"
)

// fakeStore is an in-memory Store with the same ownership and uniqueness
// rules as the Postgres implementation.
type fakeStore struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[uuid.UUID]*db.User
	pending  map[string]*db.PendingSignup
	jobs     map[uuid.UUID][]types.Job
	contacts map[uuid.UUID][]types.Contact
	seq      int

	pingErr    error
	recordsErr error
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:      now,
		users:    make(map[uuid.UUID]*db.User),
		pending:  make(map[string]*db.PendingSignup),
		jobs:     make(map[uuid.UUID][]types.Job),
		contacts: make(map[uuid.UUID][]types.Contact),
	}
}

// tick returns strictly increasing creation times so ordering is stable.
func (f *fakeStore) tick() time.Time {
	f.seq++
	return f.now().Add(time.Duration(f.seq) * time.Millisecond)
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, p *db.Profile) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	u.Name, u.JobTitle, u.Location, u.Experience, u.Skills = p.Name, p.JobTitle, p.Location, p.Experience, p.Skills
	u.UpdatedAt = f.tick()
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", db.ErrNotFound, id)
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) SavePendingSignup(_ context.Context, p *db.PendingSignup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.Email = strings.ToLower(cp.Email)
	cp.CreatedAt = f.tick()
	f.pending[cp.Email] = &cp
	return nil
}

func (f *fakeStore) GetPendingSignup(_ context.Context, email string) (*db.PendingSignup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pending[strings.ToLower(email)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) DeletePendingSignup(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, strings.ToLower(email))
	return nil
}

func (f *fakeStore) PromotePendingSignup(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pending[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: pending signup %s", db.ErrNotFound, email)
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, p.Email) {
			return nil, fmt.Errorf("%w: user %s", db.ErrDuplicate, email)
		}
	}
	created := f.tick()
	u := &db.User{
		ID:           uuid.New(),
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Name:         p.Name,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	f.users[u.ID] = u
	delete(f.pending, p.Email)
	cp := *u
	return &cp, nil
}

func (f *fakeStore) jobFromRequest(id uuid.UUID, req *types.JobRequest) types.Job {
	created := f.tick()
	return types.Job{
		ID:                  id,
		CompanyName:         req.CompanyName,
		Role:                req.Role,
		Status:              req.Status,
		DateApplied:         req.DateApplied,
		Notes:               req.Notes,
		CTC:                 req.CTC,
		Location:            req.Location,
		Techstacks:          req.Techstacks,
		ResumeLink:          req.ResumeLink,
		BondDuration:        req.BondDuration,
		BondFine:            req.BondFine,
		Stipend:             req.Stipend,
		InternDuration:      req.InternDuration,
		ApplicationDeadline: req.ApplicationDeadline,
		ImportantDate:       req.ImportantDate,
		Tag:                 req.Tag,
		CreatedAt:           created,
		UpdatedAt:           created,
	}
}

func (f *fakeStore) CreateJob(_ context.Context, userID uuid.UUID, req *types.JobRequest) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobFromRequest(uuid.New(), req)
	f.jobs[userID] = append(f.jobs[userID], j)
	return &j, nil
}

func (f *fakeStore) CreateJobs(_ context.Context, userID uuid.UUID, reqs []types.JobRequest) ([]types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := make([]types.Job, 0, len(reqs))
	for i := range reqs {
		created = append(created, f.jobFromRequest(uuid.New(), &reqs[i]))
	}
	f.jobs[userID] = append(f.jobs[userID], created...)
	return created, nil
}

func (f *fakeStore) GetJob(_ context.Context, userID, jobID uuid.UUID) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs[userID] {
		if j.ID == jobID {
			return &j, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListJobs(_ context.Context, userID uuid.UUID) ([]types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs := append([]types.Job(nil), f.jobs[userID]...)
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	return jobs, nil
}

func (f *fakeStore) UpdateJob(_ context.Context, userID, jobID uuid.UUID, req *types.JobRequest) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs[userID] {
		if j.ID == jobID {
			updated := f.jobFromRequest(jobID, req)
			updated.CreatedAt = j.CreatedAt
			f.jobs[userID][i] = updated
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("%w: job %s", db.ErrNotFound, jobID)
}

func (f *fakeStore) DeleteJob(_ context.Context, userID, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs := f.jobs[userID]
	for i, j := range jobs {
		if j.ID == jobID {
			f.jobs[userID] = append(jobs[:i], jobs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: job %s", db.ErrNotFound, jobID)
}

func (f *fakeStore) ListRecords(ctx context.Context, user analytics.Identity) ([]analytics.Record, error) {
	if f.recordsErr != nil {
		return nil, f.recordsErr
	}
	jobs, err := f.ListJobs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return types.Records(jobs), nil
}

func (f *fakeStore) contactEmailTaken(userID, except uuid.UUID, email string) bool {
	for _, c := range f.contacts[userID] {
		if c.ID != except && c.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateContact(_ context.Context, userID uuid.UUID, req *types.ContactRequest) (*types.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contactEmailTaken(userID, uuid.Nil, req.Email) {
		return nil, fmt.Errorf("%w: contact %s", db.ErrDuplicate, req.Email)
	}
	created := f.tick()
	c := types.Contact{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Company:     req.Company,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	f.contacts[userID] = append(f.contacts[userID], c)
	return &c, nil
}

func (f *fakeStore) GetContact(_ context.Context, userID, contactID uuid.UUID) (*types.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts[userID] {
		if c.ID == contactID {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListContacts(_ context.Context, userID uuid.UUID) ([]types.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contacts := append([]types.Contact(nil), f.contacts[userID]...)
	sort.SliceStable(contacts, func(i, k int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[k].Name)
	})
	return contacts, nil
}

func (f *fakeStore) UpdateContact(_ context.Context, userID, contactID uuid.UUID, req *types.ContactRequest) (*types.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contacts[userID] {
		if c.ID != contactID {
			continue
		}
		if f.contactEmailTaken(userID, contactID, req.Email) {
			return nil, fmt.Errorf("%w: contact %s", db.ErrDuplicate, req.Email)
		}
		c.Name, c.Email, c.PhoneNumber, c.Company = req.Name, req.Email, req.PhoneNumber, req.Company
		c.UpdatedAt = f.tick()
		f.contacts[userID][i] = c
		return &c, nil
	}
	return nil, fmt.Errorf("%w: contact %s", db.ErrNotFound, contactID)
}

func (f *fakeStore) DeleteContact(_ context.Context, userID, contactID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contacts := f.contacts[userID]
	for i, c := range contacts {
		if c.ID == contactID {
			f.contacts[userID] = append(contacts[:i], contacts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: contact %s", db.ErrNotFound, contactID)
}

// captureVerifier records every verification it is asked to send.
type captureVerifier struct {
	mu   sync.Mutex
	sent []Verification
	err  error
}

func (v *captureVerifier) SendVerification(_ context.Context, verification Verification) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return v.err
	}
	v.sent = append(v.sent, verification)
	return nil
}

func (v *captureVerifier) last() (Verification, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.sent) == 0 {
		return Verification{}, errors.New("no verification sent")
	}
	return v.sent[len(v.sent)-1], nil
}
