package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/types"
)

// ---------------------------------------------------------------------
// Job Handlers (/v1/jobs)
// ---------------------------------------------------------------------

// handleListJobs lists the caller's jobs, newest first. ?status= keeps one
// status; ?q= searches company, role, location and technologies.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := types.JobFilter{
		Status: analytics.Status(r.URL.Query().Get("status")),
		Query:  r.URL.Query().Get("q"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	jobs, err := s.store.ListJobs(r.Context(), userID)
	if err != nil {
		serviceErrorResponse(w, "jobs", err)
		return
	}

	matched := make([]types.Job, 0, len(jobs))
	for _, j := range jobs {
		if filter.Match(j) {
			matched = append(matched, j)
		}
	}
	s.jsonResponse(w, http.StatusOK, matched)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Normalize(s.now())
	if !validateRequest(w, req.Validate) {
		return
	}

	job, err := s.store.CreateJob(r.Context(), userID, &req)
	if err != nil {
		serviceErrorResponse(w, "jobs", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := s.ownedResourceIDs(w, r, "job")
	if !ok {
		return
	}

	job, err := s.store.GetJob(r.Context(), userID, jobID)
	if err != nil {
		serviceErrorResponse(w, "jobs", err)
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := s.ownedResourceIDs(w, r, "job")
	if !ok {
		return
	}

	var req types.JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Normalize(s.now())
	if !validateRequest(w, req.Validate) {
		return
	}

	job, err := s.store.UpdateJob(r.Context(), userID, jobID, &req)
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		serviceErrorResponse(w, "jobs", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := s.ownedResourceIDs(w, r, "job")
	if !ok {
		return
	}

	if err := s.store.DeleteJob(r.Context(), userID, jobID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		serviceErrorResponse(w, "jobs", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleImportJobs creates every row of the request or none of them.
func (s *Server) handleImportJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.ImportJobsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Normalize(s.now())
	if !validateRequest(w, req.Validate) {
		return
	}

	jobs, err := s.store.CreateJobs(r.Context(), userID, req.Jobs)
	if err != nil {
		serviceErrorResponse(w, "jobs", err)
		return
	}
	log.Printf("[jobs] imported %d jobs for %s", len(jobs), userID)
	s.jsonResponse(w, http.StatusCreated, types.ImportJobsResponse{Created: len(jobs), Jobs: jobs})
}

// ownedResourceIDs returns the caller and the {id} path value, writing the
// error response itself when either is missing.
func (s *Server) ownedResourceIDs(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+resource+" ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
