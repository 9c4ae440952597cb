package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")
	t.Setenv("CLIENT_URL", "http://localhost:3000/")
	t.Setenv("TRUST_PROXY", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:3000", cfg.ClientURL)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.MaxAge)
	assert.NotEmpty(t, cfg.Session.Secret, "development gets a fallback secret")
	assert.False(t, cfg.TrustProxy)
	require.NoError(t, cfg.Validate())
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.Session.Secret)
	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("RATE_LIMIT_MAX", "250")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("WORKER_POOL_SIZE", "8")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("AWS_S3_BUCKET", "")

	cfg := Load()

	assert.Equal(t, 250, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 8, cfg.WorkerPoolSize)
	assert.ErrorContains(t, cfg.Validate(), "AWS_S3_BUCKET")
}

func TestGoogleEnabled(t *testing.T) {
	assert.False(t, GoogleConfig{ClientID: "id"}.Enabled())
	assert.True(t, GoogleConfig{ClientID: "id", ClientSecret: "secret"}.Enabled())
}
