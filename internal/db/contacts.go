package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-tracker/internal/types"
)

const contactColumns = `id, name, email, phone_number, company, created_at, updated_at`

func scanContact(row pgx.Row) (*types.Contact, error) {
	var c types.Contact
	var phone, company *string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &company, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.PhoneNumber = deref(phone)
	c.Company = deref(company)
	return &c, nil
}

// CreateContact inserts a contact owned by userID. Returns ErrDuplicate when
// the user already has a contact with the same email.
func (db *DB) CreateContact(ctx context.Context, userID uuid.UUID, req *types.ContactRequest) (*types.Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`INSERT INTO contacts (user_id, name, email, phone_number, company)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+contactColumns,
		userID, req.Name, req.Email, nullString(req.PhoneNumber), nullString(req.Company)))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: contact %s", ErrDuplicate, req.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c, nil
}

// GetContact retrieves one of userID's contacts. Returns (nil, nil) when it
// does not exist.
func (db *DB) GetContact(ctx context.Context, userID, contactID uuid.UUID) (*types.Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2`, contactID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts returns every contact owned by userID ordered by name.
func (db *DB) ListContacts(ctx context.Context, userID uuid.UUID) ([]types.Contact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 ORDER BY LOWER(name), id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]types.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// UpdateContact replaces one of userID's contacts. Returns ErrDuplicate when
// the new email belongs to another of the user's contacts.
func (db *DB) UpdateContact(ctx context.Context, userID, contactID uuid.UUID, req *types.ContactRequest) (*types.Contact, error) {
	c, err := scanContact(db.pool.QueryRow(ctx,
		`UPDATE contacts SET name = $3, email = $4, phone_number = $5, company = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+contactColumns,
		contactID, userID, req.Name, req.Email, nullString(req.PhoneNumber), nullString(req.Company)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: contact %s", ErrNotFound, contactID)
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: contact %s", ErrDuplicate, req.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return c, nil
}

// DeleteContact removes one of userID's contacts.
func (db *DB) DeleteContact(ctx context.Context, userID, contactID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, contactID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: contact %s", ErrNotFound, contactID)
	}
	return nil
}
