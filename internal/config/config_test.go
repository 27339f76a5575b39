package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/audiohub/audiohub/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.True(t, cfg.Development())
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg := config.Load()

	assert.False(t, cfg.Development())
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg := config.Load()

	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}
