package server

import (
	"net/http"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/server/middleware"
)

// ---------------------------------------------------------------------
// Dashboard and Analytics Handlers
// ---------------------------------------------------------------------

// handleDashboard returns the home screen summary for the caller.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dashboard, err := analytics.FetchDashboard(r.Context(), s.store, identity(principal), s.now())
	if err != nil {
		serviceErrorResponse(w, "analytics", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, dashboard)
}

// handleAnalytics aggregates every job of the caller.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := analytics.Fetch(r.Context(), s.store, identity(principal), s.now())
	if err != nil {
		serviceErrorResponse(w, "analytics", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func identity(p middleware.Principal) analytics.Identity {
	return analytics.Identity{ID: p.UserID, Email: p.Email}
}
