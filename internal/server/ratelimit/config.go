package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // Requests per Window; 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity, defaults to Limit
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Credential endpoints: strictest, they are the brute force surface.
		{Path: "/v1/auth/signup", Method: "POST", Limit: 5, Window: time.Hour, Burst: 3},
		{Path: "/v1/auth/verify", Method: "POST", Limit: 10, Window: time.Hour, Burst: 5},
		{Path: "/v1/auth/login", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/v1/users/me/password", Method: "PUT", Limit: 5, Window: time.Minute, Burst: 2},

		// Bulk import
		{Path: "/v1/jobs/import", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		// Writes
		{Path: "/v1/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/jobs/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/contacts", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/contacts/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/contacts/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/users/me", Method: "PUT", Limit: 30, Window: time.Minute, Burst: 5},

		// Reads use the default limit; /health is unlimited.
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
