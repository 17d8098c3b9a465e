package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all gateway configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// Hiring platform API.
	PlatformBaseURL string
	AccessToken     string
	RequestTimeout  time.Duration

	// Proctoring policy. CodingViolationLimit is the warning threshold for
	// coding tests; the aptitude test tracks violations for display only and
	// relies on the timer as the hard stop, unless AptitudeEnforceLimit is set.
	CodingViolationLimit   int
	AptitudeViolationLimit int
	AptitudeEnforceLimit   bool
	PerItemSeconds         int

	// Interview flow: delay before re-fetching the session after an answer
	// is accepted (server-side scoring is eventually consistent).
	InterviewRefetchDelay time.Duration

	// RedisURL enables the violation journal when non-empty.
	RedisURL string

	// GatewayToken, when set, is required from the presentation layer on
	// every request (X-Gateway-Token header).
	GatewayToken string

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8090"),
		GinMode:                getEnv("GIN_MODE", "debug"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "pretty"),
		PlatformBaseURL:        getEnv("PLATFORM_BASE_URL", "http://localhost:8080/api/v1"),
		AccessToken:            getEnv("PLATFORM_ACCESS_TOKEN", ""),
		RequestTimeout:         time.Duration(getEnvInt("PLATFORM_TIMEOUT_SECONDS", 15)) * time.Second,
		CodingViolationLimit:   getEnvInt("CODING_VIOLATION_LIMIT", 2),
		AptitudeViolationLimit: getEnvInt("APTITUDE_VIOLATION_LIMIT", 2),
		AptitudeEnforceLimit:   getEnvBool("APTITUDE_ENFORCE_LIMIT", false),
		PerItemSeconds:         getEnvInt("PER_ITEM_SECONDS", 60),
		InterviewRefetchDelay:  time.Duration(getEnvInt("INTERVIEW_REFETCH_MS", 2000)) * time.Millisecond,
		RedisURL:               getEnv("REDIS_URL", ""),
		GatewayToken:           getEnv("GATEWAY_TOKEN", ""),
		AllowedOrigins:         parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
