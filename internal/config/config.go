package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Session credentials presented during the socket handshake.
	SessionJWTSecret string
	SessionTokenTTL  time.Duration

	// Shared secret guarding the internal emit and token-mint endpoints.
	EmitAuthSecret string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// How long an emitted event id stays in the dedupe set.
	EventDedupeTTL time.Duration

	WSAllowedOrigins []string

	// Channel client defaults, also served to clients that ask.
	ChannelMaxRetries  int
	ChannelRetryDelay  time.Duration
	ChannelDialTimeout time.Duration

	// Long-poll fallback tuning.
	PollWait      time.Duration
	SessionBuffer int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),
		SessionTokenTTL:  getEnvAsDuration("SESSION_TOKEN_TTL", 15*time.Minute),

		EmitAuthSecret: getEnv("EMIT_AUTH_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		EventDedupeTTL: getEnvAsDuration("EVENT_DEDUPE_TTL", 24*time.Hour),

		WSAllowedOrigins: getEnvAsList("WS_ALLOWED_ORIGINS", nil),

		ChannelMaxRetries:  getEnvAsInt("CHANNEL_MAX_RETRIES", 5),
		ChannelRetryDelay:  getEnvAsDuration("CHANNEL_RETRY_DELAY", time.Second),
		ChannelDialTimeout: getEnvAsDuration("CHANNEL_DIAL_TIMEOUT", 10*time.Second),

		PollWait:      getEnvAsDuration("POLL_WAIT", 25*time.Second),
		SessionBuffer: getEnvAsInt("SESSION_BUFFER", 32),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
