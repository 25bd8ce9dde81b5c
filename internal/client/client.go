// Package client talks to the jobtrack API and keeps the signed-in session
// on the local machine.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "jobtrack-cli/1.0"

// APIError is a non-2xx answer from the API. Message is the server's
// {"error": ...} text when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Options configures the client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client is a JSON client for the jobtrack API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: ua,
	}, nil
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// Health reports the server status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// Signup starts account creation; the account exists once Verify succeeds.
func (c *Client) Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error) {
	var out types.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify confirms a pending signup. On success the client keeps the issued token.
func (c *Client) Verify(ctx context.Context, req types.VerifyRequest) (*types.LoginResponse, error) {
	return c.authenticate(ctx, "/v1/auth/verify", req)
}

// Login signs in. On success the client keeps the issued token.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	return c.authenticate(ctx, "/v1/auth/login", req)
}

func (c *Client) authenticate(ctx context.Context, path string, req any) (*types.LoginResponse, error) {
	var out types.LoginResponse
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var out types.User
	if err := c.do(ctx, http.MethodGet, "/v1/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, req types.UpdateProfileRequest) (*types.User, error) {
	var out types.User
	if err := c.do(ctx, http.MethodPut, "/v1/users/me", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword updates the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req types.UpdatePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/v1/users/me/password", nil, req, nil)
}

// ListJobs lists the user's jobs, narrowed by filter.
func (c *Client) ListJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	var out []types.Job
	if err := c.do(ctx, http.MethodGet, "/v1/jobs", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob fetches one job.
func (c *Client) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	var out types.Job
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateJob adds a job.
func (c *Client) CreateJob(ctx context.Context, req types.JobRequest) (*types.Job, error) {
	var out types.Job
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateJob replaces a job.
func (c *Client) UpdateJob(ctx context.Context, id uuid.UUID, req types.JobRequest) (*types.Job, error) {
	var out types.Job
	if err := c.do(ctx, http.MethodPut, "/v1/jobs/"+id.String(), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/v1/jobs/"+id.String(), nil, nil, nil)
}

// ImportJobs adds a batch of jobs. The batch is all-or-nothing on the server.
func (c *Client) ImportJobs(ctx context.Context, req types.ImportJobsRequest) (*types.ImportJobsResponse, error) {
	var out types.ImportJobsResponse
	if err := c.do(ctx, http.MethodPost, "/v1/jobs/import", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts lists the user's contacts matching query.
func (c *Client) ListContacts(ctx context.Context, query string) ([]types.Contact, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	var out []types.Contact
	if err := c.do(ctx, http.MethodGet, "/v1/contacts", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContact fetches one contact.
func (c *Client) GetContact(ctx context.Context, id uuid.UUID) (*types.Contact, error) {
	var out types.Contact
	if err := c.do(ctx, http.MethodGet, "/v1/contacts/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateContact adds a contact.
func (c *Client) CreateContact(ctx context.Context, req types.ContactRequest) (*types.Contact, error) {
	var out types.Contact
	if err := c.do(ctx, http.MethodPost, "/v1/contacts", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateContact replaces a contact.
func (c *Client) UpdateContact(ctx context.Context, id uuid.UUID, req types.ContactRequest) (*types.Contact, error) {
	var out types.Contact
	if err := c.do(ctx, http.MethodPut, "/v1/contacts/"+id.String(), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/v1/contacts/"+id.String(), nil, nil, nil)
}

// Dashboard returns the home screen summary computed by the server.
func (c *Client) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	var out analytics.Dashboard
	if err := c.do(ctx, http.MethodGet, "/v1/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics returns the aggregates computed by the server.
func (c *Client) Analytics(ctx context.Context) (*analytics.Result, error) {
	var out analytics.Result
	if err := c.do(ctx, http.MethodGet, "/v1/analytics", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordSource returns a Source backed by the job listing so the
// aggregates can be computed locally. The token already scopes the listing
// to one user, so the identity is not sent. Records arrive in the server's
// listing order, newest first, so local rankings break ties as the server
// does.
func (c *Client) RecordSource() analytics.Source {
	return analytics.SourceFunc(func(ctx context.Context, _ analytics.Identity) ([]analytics.Record, error) {
		jobs, err := c.ListJobs(ctx, types.JobFilter{})
		if err != nil {
			return nil, err
		}
		return types.Records(jobs), nil
	})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
