package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "development")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, defaultAppName, cfg.AppName)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.MaxWalletsPerOwner)
	assert.Equal(t, "wallet-events", cfg.NotifyChannel)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, defaultJWTIssuer, cfg.JWTIssuer)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/wallets")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PORT", ":9090")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("WALLET_MAX_PER_OWNER", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 3, cfg.MaxWalletsPerOwner)
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "development")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvRequiresStoresOutsideDevelopment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := FromEnv()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_TTL_MINUTES", "soon")

	_, err := FromEnv()
	require.Error(t, err)
}
