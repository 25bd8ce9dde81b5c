package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/types"
)

// ctc is read back as text so that the value is resolved by
// analytics.ParseCTC exactly once, the same way imported values are.
const jobColumns = `id, company_name, role, status, date_applied, notes, ctc::text, location, techstacks,
	resume_link, bond_duration, bond_fine::float8, stipend::float8, intern_duration,
	application_deadline, important_date, tag, created_at, updated_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	var status string
	var dateApplied time.Time
	var notes, ctc, location, resumeLink, tag *string
	var techstacks []byte
	var deadline, important *time.Time

	err := row.Scan(&j.ID, &j.CompanyName, &j.Role, &status, &dateApplied, &notes, &ctc, &location, &techstacks,
		&resumeLink, &j.BondDuration, &j.BondFine, &j.Stipend, &j.InternDuration,
		&deadline, &important, &tag, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	j.Status = analytics.Status(status)
	j.DateApplied = formatDate(&dateApplied)
	j.Notes = deref(notes)
	j.CTC = analytics.ParseCTC(ctc)
	j.Location = deref(location)
	j.Techstacks = decodeStringArray(techstacks)
	j.ResumeLink = deref(resumeLink)
	j.ApplicationDeadline = formatDate(deadline)
	j.ImportantDate = formatDate(important)
	j.Tag = deref(tag)
	return &j, nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(analytics.DateLayout)
}

// parseDate converts a validated YYYY-MM-DD string to a DATE parameter.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(analytics.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// jobArgs returns the write parameters for req in column order
// $2..$17 (after user_id or id).
func jobArgs(req *types.JobRequest) []any {
	return []any{
		req.CompanyName,
		req.Role,
		string(req.Status),
		parseDate(req.DateApplied),
		nullString(req.Notes),
		req.CTC.Ptr(),
		nullString(req.Location),
		encodeStringArray(req.Techstacks),
		nullString(req.ResumeLink),
		req.BondDuration,
		req.BondFine,
		req.Stipend,
		req.InternDuration,
		parseDate(req.ApplicationDeadline),
		parseDate(req.ImportantDate),
		nullString(req.Tag),
	}
}

const insertJobSQL = `INSERT INTO jobs (user_id, company_name, role, status, date_applied, notes, ctc, location, techstacks,
	resume_link, bond_duration, bond_fine, stipend, intern_duration, application_deadline, important_date, tag)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING ` + jobColumns

// CreateJob inserts a job owned by userID.
func (db *DB) CreateJob(ctx context.Context, userID uuid.UUID, req *types.JobRequest) (*types.Job, error) {
	args := append([]any{userID}, jobArgs(req)...)
	job, err := scanJob(db.pool.QueryRow(ctx, insertJobSQL, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// CreateJobs inserts every request in one transaction. Either all rows are
// created or none are.
func (db *DB) CreateJobs(ctx context.Context, userID uuid.UUID, reqs []types.JobRequest) ([]types.Job, error) {
	jobs := make([]types.Job, 0, len(reqs))
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range reqs {
			batch.Queue(insertJobSQL, append([]any{userID}, jobArgs(&reqs[i])...)...)
		}
		results := tx.SendBatch(ctx, batch)
		for i := range reqs {
			job, err := scanJob(results.QueryRow())
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to import job %d: %w", i, err)
			}
			jobs = append(jobs, *job)
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob retrieves one of userID's jobs. Returns (nil, nil) when it does not
// exist or belongs to someone else.
func (db *DB) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`, jobID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns every job owned by userID ordered by created_at
// descending, then id. Jobs imported in one batch share a created_at, so
// among them the id decides.
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID) ([]types.Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]types.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob replaces every editable field of one of userID's jobs.
func (db *DB) UpdateJob(ctx context.Context, userID, jobID uuid.UUID, req *types.JobRequest) (*types.Job, error) {
	args := append([]any{jobID}, jobArgs(req)...)
	args = append(args, userID)
	job, err := scanJob(db.pool.QueryRow(ctx,
		`UPDATE jobs SET company_name = $2, role = $3, status = $4, date_applied = $5, notes = $6, ctc = $7,
			location = $8, techstacks = $9, resume_link = $10, bond_duration = $11, bond_fine = $12, stipend = $13,
			intern_duration = $14, application_deadline = $15, important_date = $16, tag = $17, updated_at = NOW()
		 WHERE id = $1 AND user_id = $18
		 RETURNING `+jobColumns, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// DeleteJob removes one of userID's jobs.
func (db *DB) DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND user_id = $2`, jobID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return nil
}

// ListRecords implements analytics.Source over the jobs table, in ListJobs
// order. That order breaks ties in the engine's top-N rankings.
func (db *DB) ListRecords(ctx context.Context, user analytics.Identity) ([]analytics.Record, error) {
	jobs, err := db.ListJobs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return types.Records(jobs), nil
}
