package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/types"
)

// ---------------------------------------------------------------------
// Contact Handlers (/v1/contacts)
// ---------------------------------------------------------------------

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contacts, err := s.store.ListContacts(r.Context(), userID)
	if err != nil {
		serviceErrorResponse(w, "contacts", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.FilterContacts(contacts, r.URL.Query().Get("q")))
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Normalize()
	if !validateRequest(w, req.Validate) {
		return
	}

	contact, err := s.store.CreateContact(r.Context(), userID, &req)
	if err != nil {
		serviceErrorResponse(w, "contacts", contactError(err, req.Email))
		return
	}
	s.jsonResponse(w, http.StatusCreated, contact)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.ownedResourceIDs(w, r, "contact")
	if !ok {
		return
	}

	contact, err := s.store.GetContact(r.Context(), userID, contactID)
	if err != nil {
		serviceErrorResponse(w, "contacts", err)
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.ownedResourceIDs(w, r, "contact")
	if !ok {
		return
	}

	var req types.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Normalize()
	if !validateRequest(w, req.Validate) {
		return
	}

	contact, err := s.store.UpdateContact(r.Context(), userID, contactID, &req)
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}
	if err != nil {
		serviceErrorResponse(w, "contacts", contactError(err, req.Email))
		return
	}
	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.ownedResourceIDs(w, r, "contact")
	if !ok {
		return
	}

	if err := s.store.DeleteContact(r.Context(), userID, contactID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Contact not found")
			return
		}
		serviceErrorResponse(w, "contacts", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// contactError turns a duplicate-email store error into ErrDuplicateContact.
func contactError(err error, email string) error {
	if errors.Is(err, db.ErrDuplicate) {
		return &ErrDuplicateContact{Email: email}
	}
	return err
}
