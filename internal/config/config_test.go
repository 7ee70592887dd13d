package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.ChannelMaxRetries)
	assert.Equal(t, time.Second, cfg.ChannelRetryDelay)
	assert.Equal(t, 10*time.Second, cfg.ChannelDialTimeout)
	assert.Equal(t, 24*time.Hour, cfg.EventDedupeTTL)
	assert.Equal(t, 32, cfg.SessionBuffer)
	assert.Nil(t, cfg.WSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHANNEL_MAX_RETRIES", "3")
	t.Setenv("CHANNEL_RETRY_DELAY", "250ms")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://portal.example.com, https://admin.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.ChannelMaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.ChannelRetryDelay)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, []string{"https://portal.example.com", "https://admin.example.com"}, cfg.WSAllowedOrigins)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CHANNEL_MAX_RETRIES", "lots")
	t.Setenv("CHANNEL_RETRY_DELAY", "soon")
	t.Setenv("REDIS_TLS", "maybe")

	cfg := Load()

	assert.Equal(t, 5, cfg.ChannelMaxRetries)
	assert.Equal(t, time.Second, cfg.ChannelRetryDelay)
	assert.False(t, cfg.RedisTLS)
}
