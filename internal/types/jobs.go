package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/analytics"
)

// MaxImportJobs bounds a single bulk import.
const MaxImportJobs = 500

// Job is a tracked job application as returned by the API. Dates are
// calendar dates in YYYY-MM-DD form; empty means unset.
type Job struct {
	ID                  uuid.UUID        `json:"id"`
	CompanyName         string           `json:"company_name"`
	Role                string           `json:"role"`
	Status              analytics.Status `json:"status"`
	DateApplied         string           `json:"date_applied"`
	Notes               string           `json:"notes,omitempty"`
	CTC                 analytics.CTC    `json:"ctc"`
	Location            string           `json:"location,omitempty"`
	Techstacks          StringList       `json:"techstacks"`
	ResumeLink          string           `json:"resume_link,omitempty"`
	BondDuration        *int             `json:"bond_duration,omitempty"`
	BondFine            *float64         `json:"bond_fine,omitempty"`
	Stipend             *float64         `json:"stipend,omitempty"`
	InternDuration      *int             `json:"intern_duration,omitempty"`
	ApplicationDeadline string           `json:"application_deadline,omitempty"`
	ImportantDate       string           `json:"important_date,omitempty"`
	Tag                 string           `json:"tag,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Record resolves the job into the aggregation view. Unparseable dates
// become zero times.
func (j Job) Record() analytics.Record {
	return analytics.Record{
		ID:                  j.ID,
		CompanyName:         j.CompanyName,
		Role:                j.Role,
		Status:              j.Status,
		DateApplied:         analytics.ParseDate(j.DateApplied),
		CTC:                 j.CTC,
		Location:            j.Location,
		Techstacks:          j.Techstacks,
		Tag:                 j.Tag,
		ApplicationDeadline: analytics.ParseDate(j.ApplicationDeadline),
		ImportantDate:       analytics.ParseDate(j.ImportantDate),
		CreatedAt:           j.CreatedAt,
	}
}

// Records converts a slice of jobs.
func Records(jobs []Job) []analytics.Record {
	records := make([]analytics.Record, 0, len(jobs))
	for _, j := range jobs {
		records = append(records, j.Record())
	}
	return records
}

// JobRequest creates or replaces a job. Call Normalize before Validate so
// defaults are applied.
type JobRequest struct {
	CompanyName         string           `json:"company_name" validate:"required,max=255"`
	Role                string           `json:"role" validate:"required,max=255"`
	Status              analytics.Status `json:"status" validate:"required,jobstatus"`
	DateApplied         string           `json:"date_applied" validate:"required,datetime=2006-01-02"`
	Notes               string           `json:"notes"`
	CTC                 analytics.CTC    `json:"ctc"`
	Location            string           `json:"location" validate:"required,max=255"`
	Techstacks          StringList       `json:"techstacks" validate:"min=1,dive,required,max=100"`
	ResumeLink          string           `json:"resume_link" validate:"omitempty,url"`
	BondDuration        *int             `json:"bond_duration" validate:"omitempty,min=0"`
	BondFine            *float64         `json:"bond_fine" validate:"omitempty,min=0"`
	Stipend             *float64         `json:"stipend" validate:"omitempty,min=0"`
	InternDuration      *int             `json:"intern_duration" validate:"omitempty,min=0"`
	ApplicationDeadline string           `json:"application_deadline" validate:"omitempty,datetime=2006-01-02"`
	ImportantDate       string           `json:"important_date" validate:"omitempty,datetime=2006-01-02"`
	Tag                 string           `json:"tag" validate:"max=100"`
}

// Normalize trims text fields and fills the status and application date
// defaults. today supplies the default date.
func (r *JobRequest) Normalize(today time.Time) {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Role = strings.TrimSpace(r.Role)
	r.Location = strings.TrimSpace(r.Location)
	r.Tag = strings.TrimSpace(r.Tag)
	r.ResumeLink = strings.TrimSpace(r.ResumeLink)
	r.DateApplied = strings.TrimSpace(r.DateApplied)
	r.ApplicationDeadline = strings.TrimSpace(r.ApplicationDeadline)
	r.ImportantDate = strings.TrimSpace(r.ImportantDate)
	if r.Status == "" {
		r.Status = analytics.StatusApplied
	}
	if r.DateApplied == "" {
		r.DateApplied = today.Format(analytics.DateLayout)
	}
}

// Validate validates the JobRequest.
func (r *JobRequest) Validate() error {
	return Validator().Struct(r)
}

// ImportJobsRequest adds many jobs at once.
type ImportJobsRequest struct {
	Jobs []JobRequest `json:"jobs" validate:"required,min=1,max=500,dive"`
}

// Normalize applies JobRequest defaults to every row.
func (r *ImportJobsRequest) Normalize(today time.Time) {
	for i := range r.Jobs {
		r.Jobs[i].Normalize(today)
	}
}

// Validate validates every row of the import.
func (r *ImportJobsRequest) Validate() error {
	return Validator().Struct(r)
}

// ImportJobsResponse reports the rows created by an import.
type ImportJobsResponse struct {
	Created int   `json:"created"`
	Jobs    []Job `json:"jobs"`
}

// JobFilter narrows a job listing. Query matches company, role, location and
// technology case-insensitively.
type JobFilter struct {
	Status analytics.Status
	Query  string
}

// Match reports whether j passes the filter.
func (f JobFilter) Match(j Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range append([]string{j.CompanyName, j.Role, j.Location}, j.Techstacks...) {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
