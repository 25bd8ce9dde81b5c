// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/server/ratelimit"
	"github.com/jonathan/job-tracker/internal/types"
)

// maxBodyBytes bounds request bodies; imports carry up to 500 rows.
const maxBodyBytes = 4 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	closeStore  func()
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	now         func() time.Time
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
}

// Options wires a Server from already-built dependencies.
type Options struct {
	Port            int
	Store           Store
	JWT             *config.JWTConfig
	Passwords       *config.PasswordConfig
	Verifier        Verifier
	VerificationTTL time.Duration
	RateLimit       *ratelimit.Config
	Now             func() time.Time
}

// New connects to the database and creates a server configured from the
// environment.
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	verificationConfig, err := config.NewVerificationConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create verification config: %w", err)
	}

	var verifier Verifier = LogVerifier{}
	if verificationConfig.WebhookURL != "" {
		verifier = NewWebhookVerifier(verificationConfig.WebhookURL)
	} else {
		log.Printf("[auth] VERIFICATION_WEBHOOK_URL not set, verification codes will be logged")
	}

	s := NewWithOptions(Options{
		Port:            cfg.Port,
		Store:           database,
		JWT:             jwtConfig,
		Passwords:       passwordConfig,
		Verifier:        verifier,
		VerificationTTL: verificationConfig.TTL(),
		RateLimit:       ratelimit.LoadConfig(),
	})
	s.closeStore = database.Close
	return s, nil
}

// NewWithOptions creates a server from explicit dependencies.
func NewWithOptions(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.VerificationTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &Server{
		store:       opts.Store,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		jwtService:  NewJWTService(opts.JWT),
		now:         now,
	}
	s.jwtService.now = now
	s.userService = NewUserService(opts.Store, opts.Passwords, opts.Verifier, ttl)
	s.userService.now = now
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts
	mux.HandleFunc("POST /v1/auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /v1/auth/verify", s.authHandler.Verify)
	mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)

	// Profile
	mux.Handle("GET /v1/users/me", protected(s.handleGetMe))
	mux.Handle("PUT /v1/users/me", protected(s.handleUpdateMe))
	mux.Handle("PUT /v1/users/me/password", protected(s.authHandler.UpdatePassword))

	// Jobs
	mux.Handle("GET /v1/jobs", protected(s.handleListJobs))
	mux.Handle("POST /v1/jobs", protected(s.handleCreateJob))
	mux.Handle("POST /v1/jobs/import", protected(s.handleImportJobs))
	mux.Handle("GET /v1/jobs/{id}", protected(s.handleGetJob))
	mux.Handle("PUT /v1/jobs/{id}", protected(s.handleUpdateJob))
	mux.Handle("DELETE /v1/jobs/{id}", protected(s.handleDeleteJob))

	// Contacts
	mux.Handle("GET /v1/contacts", protected(s.handleListContacts))
	mux.Handle("POST /v1/contacts", protected(s.handleCreateContact))
	mux.Handle("GET /v1/contacts/{id}", protected(s.handleGetContact))
	mux.Handle("PUT /v1/contacts/{id}", protected(s.handleUpdateContact))
	mux.Handle("DELETE /v1/contacts/{id}", protected(s.handleDeleteContact))

	// Home screen and analytics
	mux.Handle("GET /v1/dashboard", protected(s.handleDashboard))
	mux.Handle("GET /v1/analytics", protected(s.handleAnalytics))

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close stops background work and releases the database pool.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports whether the server can reach its database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.Printf("[health] database ping failed: %v", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// serviceErrorResponse maps err to its status code. Internal errors are
// logged under tag and hidden from the client.
func serviceErrorResponse(w http.ResponseWriter, tag string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %v", tag, err)
	}
	writeError(w, status, publicMessage(err))
}

// decodeJSON reads the request body into dst, answering 400 itself on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// validateRequest runs validate, answering 400 with the first failure.
func validateRequest(w http.ResponseWriter, validate func() error) bool {
	if err := validate(); err != nil {
		writeError(w, http.StatusBadRequest, types.ValidationMessage(err))
		return false
	}
	return true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, validate func() error) bool {
	return decodeJSON(w, r, dst) && validateRequest(w, validate)
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
