package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// VerificationConfig controls how signup verification codes are issued and
// delivered.
type VerificationConfig struct {
	// WebhookURL receives {"email","name","code","expires_at"} for every
	// signup. When empty the code is written to the server log instead.
	WebhookURL string
	TTLHours   int
}

// NewVerificationConfig reads VERIFICATION_WEBHOOK_URL and
// VERIFICATION_TTL_HOURS (default 24).
func NewVerificationConfig() (*VerificationConfig, error) {
	ttl := 24
	if raw := os.Getenv("VERIFICATION_TTL_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid VERIFICATION_TTL_HOURS: %v", err)
		}
		ttl = parsed
	}

	cfg := &VerificationConfig{
		WebhookURL: os.Getenv("VERIFICATION_WEBHOOK_URL"),
		TTLHours:   ttl,
	}
	if cfg.TTLHours < 1 {
		return nil, fmt.Errorf("VERIFICATION_TTL_HOURS must be at least 1 hour, got: %d", cfg.TTLHours)
	}
	if cfg.WebhookURL != "" {
		u, err := url.Parse(cfg.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid VERIFICATION_WEBHOOK_URL: %q", cfg.WebhookURL)
		}
	}
	return cfg, nil
}

// TTL is how long a pending signup stays valid.
func (c *VerificationConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}
