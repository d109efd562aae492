package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// MinSessionTokenCap is the smallest token budget a stream may be configured with.
	MinSessionTokenCap = 200
	// MinCharsPerToken is the smallest characters-per-token ratio.
	MinCharsPerToken = 1

	ProviderOpenAI = "openai"
	ProviderStub   = "stub"
)

// Config holds all configuration for the tutor service
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins string

	// Logging
	LogLevel  string
	LogFormat string

	// Upstream LLM configuration
	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Session cap
	SessionTokenCap int
	CharsPerToken   int

	// Stream bounds
	UpstreamReadTimeout time.Duration
	MaxStreamDuration   time.Duration
	MaxMessageChars     int

	// Rate limiting of the tutor stream
	RateLimitWindow      time.Duration
	RateLimitMaxRequests int
	RateLimitSecret      string
	CookieSecure         bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),

		SessionTokenCap: atLeast(getIntEnv("SESSION_TOKEN_CAP", 1200), MinSessionTokenCap),
		CharsPerToken:   atLeast(getIntEnv("CHARS_PER_TOKEN", 4), MinCharsPerToken),

		UpstreamReadTimeout: getDurationEnv("UPSTREAM_READ_TIMEOUT", 30*time.Second),
		MaxStreamDuration:   getDurationEnv("MAX_STREAM_DURATION", 5*time.Minute),
		MaxMessageChars:     getIntEnv("MAX_MESSAGE_CHARS", 4000),

		RateLimitWindow:      time.Duration(getIntEnv("RL_WINDOW_SECONDS", 60)) * time.Second,
		RateLimitMaxRequests: getIntEnv("RL_MAX_REQUESTS", 8),
		RateLimitSecret:      getEnv("RATE_LIMIT_SECRET", "dev-secret-insecure"),
		CookieSecure:         getBoolEnv("COOKIE_SECURE", true),
	}
}

// CharLimit is the per-stream character budget derived from the token cap.
func (c *Config) CharLimit() int {
	return c.SessionTokenCap * c.CharsPerToken
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
