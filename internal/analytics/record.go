// Package analytics turns a snapshot of job application records into
// chart-ready aggregates: status histograms, monthly trends, top-N rankings,
// technology frequencies and compensation statistics.
//
// Every function in this package is pure. Inputs are never mutated and each
// call returns freshly allocated values, so callers may invoke them
// concurrently without coordination.
package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the application stage of a job record.
type Status string

// The fixed set of application stages.
const (
	StatusYetToApply          Status = "Yet to Apply"
	StatusApplied             Status = "Applied"
	StatusShortlisted         Status = "Shortlisted"
	StatusAssessmentCompleted Status = "Assessment Completed"
	StatusInterviewScheduled  Status = "Interview Scheduled"
	StatusInterviewing        Status = "Interviewing"
	StatusOffered             Status = "Offered"
	StatusAccepted            Status = "Accepted"
	StatusRejected            Status = "Rejected"
	StatusWithdrawn           Status = "Withdrawn"
)

// Statuses lists every known status in funnel order.
var Statuses = []Status{
	StatusYetToApply,
	StatusApplied,
	StatusShortlisted,
	StatusAssessmentCompleted,
	StatusInterviewScheduled,
	StatusInterviewing,
	StatusOffered,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
}

// Valid reports whether s is one of the known statuses. The comparison is
// exact and case-sensitive.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// UnknownLocation is the grouping key for records without a location.
const UnknownLocation = "Unknown"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CTC is an optional annual compensation figure. Valid is false when the
// source value was absent or could not be read as a finite number.
type CTC struct {
	Value float64
	Valid bool
}

// NewCTC returns a valid CTC holding v.
func NewCTC(v float64) CTC {
	return CTC{Value: v, Valid: true}
}

// ParseCTC resolves a loosely typed compensation value coming from the store
// or from an import file. Strings are trimmed and parsed; blank strings,
// non-numeric strings, NaN and infinities are all treated as absent.
func ParseCTC(raw any) CTC {
	var f float64
	switch v := raw.(type) {
	case nil:
		return CTC{}
	case CTC:
		return v
	case *CTC:
		if v == nil {
			return CTC{}
		}
		return *v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return CTC{}
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return CTC{}
		}
		f = parsed
	case *string:
		if v == nil {
			return CTC{}
		}
		return ParseCTC(*v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return CTC{}
		}
		f = parsed
	case float64:
		f = v
	case *float64:
		if v == nil {
			return CTC{}
		}
		f = *v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return CTC{}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return CTC{}
	}
	return NewCTC(f)
}

// Ptr returns the value as a pointer, nil when absent.
func (c CTC) Ptr() *float64 {
	if !c.Valid {
		return nil
	}
	v := c.Value
	return &v
}

// MarshalJSON writes the value as a JSON number, or null when absent.
func (c CTC) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (c *CTC) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode ctc: %w", err)
	}
	*c = ParseCTC(raw)
	return nil
}

// Record is the read-only view of a stored job application used by the
// aggregation functions. Loosely typed store fields are resolved before a
// Record is built: DateApplied is zero when the stored date was missing or
// unparseable, and CTC carries its own validity flag.
type Record struct {
	ID                  uuid.UUID `json:"id"`
	CompanyName         string    `json:"company_name"`
	Role                string    `json:"role"`
	Status              Status    `json:"status"`
	DateApplied         time.Time `json:"date_applied,omitzero"`
	CTC                 CTC       `json:"ctc"`
	Location            string    `json:"location,omitempty"`
	Techstacks          []string  `json:"techstacks,omitempty"`
	Tag                 string    `json:"tag,omitempty"`
	ApplicationDeadline time.Time `json:"application_deadline,omitzero"`
	ImportantDate       time.Time `json:"important_date,omitzero"`
	CreatedAt           time.Time `json:"created_at,omitzero"`
}

// LocationKey returns the location grouping key, UnknownLocation when empty.
func (r Record) LocationKey() string {
	if r.Location == "" {
		return UnknownLocation
	}
	return r.Location
}

// ParseDate reads a calendar date in DateLayout or RFC 3339 form. It returns
// the zero time when the value cannot be parsed.
func ParseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
