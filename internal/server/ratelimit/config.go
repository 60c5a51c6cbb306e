package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tiers group endpoints by how expensive a request is
const (
	TierDraft    = "draft"    // calls the generative model
	TierPipeline = "pipeline" // runs the deterministic pipeline
	TierWrite    = "write"    // mutates stored quotes
	TierDefault  = "default"
	TierExempt   = "exempt"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
	Tier   string
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_DRAFT_PER_HOUR", 20)),
	}
}

// DefaultEndpointConfigs returns the endpoint limits of the quote API.
// draftPerHour bounds the model-backed endpoint.
func DefaultEndpointConfigs(draftPerHour int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/quotes/draft", Method: "POST", Limit: draftPerHour, Window: time.Hour, Burst: 3, Tier: TierDraft},

		{Path: "/quotes", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20, Tier: TierPipeline},
		{Path: "/quotes/stream", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20, Tier: TierPipeline},
		{Path: "/quotes/validate", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20, Tier: TierPipeline},

		{Path: "/quotes/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10, Tier: TierWrite},

		// reads use the default limit; /health and /metrics are exempt in the matcher
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

// parseIPList parses a comma-separated list of client addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
