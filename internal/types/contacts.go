package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is a networking contact owned by one user.
type Contact struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Company     string    `json:"company,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContactRequest creates or replaces a contact.
type ContactRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,len=10,numeric"`
	Company     string `json:"company" validate:"max=255"`
}

// Normalize trims every field and lowercases the email.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Company = strings.TrimSpace(r.Company)
}

// Validate validates the ContactRequest.
func (r *ContactRequest) Validate() error {
	return Validator().Struct(r)
}

// FilterContacts returns the contacts matching query. Name, email and
// company match case-insensitively; the phone number matches as a plain
// substring. A blank query returns every contact.
func FilterContacts(contacts []Contact, query string) []Contact {
	q := strings.TrimSpace(query)
	if q == "" {
		out := make([]Contact, len(contacts))
		copy(out, contacts)
		return out
	}
	lower := strings.ToLower(q)

	out := make([]Contact, 0)
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.Email), lower) ||
			strings.Contains(strings.ToLower(c.Company), lower) ||
			strings.Contains(c.PhoneNumber, q) {
			out = append(out, c)
		}
	}
	return out
}
