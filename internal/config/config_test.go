package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, int32(50), cfg.OutboxBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 5*time.Minute, cfg.FXRateCacheTTL)
	assert.Equal(t, "transfer-service", cfg.JWTIssuer)
	assert.Equal(t, "transfer-api", cfg.JWTAudience)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("TRANSFER_PORT", "9090")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, int32(10), cfg.OutboxBatchSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTBOX_POLL_INTERVAL")
}
