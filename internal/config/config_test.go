package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rewards")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SMTP_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.True(t, cfg.SchedulerEnabled)
	// No SMTP_HOST means no mail: the wiring keys the notifier off an empty
	// host.
	assert.Empty(t, cfg.SMTPHost)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestGetDurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "30")
	assert.Equal(t, 30*time.Second, getDuration("HTTP_READ_TIMEOUT", time.Second))

	t.Setenv("HTTP_READ_TIMEOUT", "45s")
	assert.Equal(t, 45*time.Second, getDuration("HTTP_READ_TIMEOUT", time.Second))
}
