package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Verification is a signup code to deliver to the account owner.
type Verification struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Verifier delivers verification codes to whoever proves ownership of the
// email address.
type Verifier interface {
	SendVerification(ctx context.Context, v Verification) error
}

// LogVerifier writes codes to the server log. Development only.
type LogVerifier struct{}

// SendVerification implements Verifier.
func (LogVerifier) SendVerification(_ context.Context, v Verification) error {
	log.Printf("[auth] verification code for %s: %s (expires %s)", v.Email, v.Code, v.ExpiresAt.Format(time.RFC3339))
	return nil
}

// WebhookVerifier POSTs each Verification as JSON to URL. Any non-2xx
// response is an error.
type WebhookVerifier struct {
	URL    string
	Client *http.Client
}

// NewWebhookVerifier creates a WebhookVerifier with a bounded timeout.
func NewWebhookVerifier(url string) *WebhookVerifier {
	return &WebhookVerifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendVerification implements Verifier.
func (v *WebhookVerifier) SendVerification(ctx context.Context, verification Verification) error {
	body, err := json.Marshal(verification)
	if err != nil {
		return fmt.Errorf("failed to encode verification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver verification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("verification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
