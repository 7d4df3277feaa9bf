package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = LoadLocation("Not/AZone")
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "config-test-secret")
	t.Setenv("PORT", "")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("VENUE_LOCK_TTL", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("AUTO_MIGRATE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.VenueLockTTL)
	assert.Equal(t, "@every 15m", cfg.PendingExpirySpec)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "config-test-secret", cfg.JWTSecret)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
	assert.Nil(t, cfg)
}

func TestLoadAutoMigrate(t *testing.T) {
	t.Setenv("JWT_SECRET", "config-test-secret")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("SMTP_PORT", "")

	t.Setenv("AUTO_MIGRATE", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AutoMigrate)

	t.Setenv("AUTO_MIGRATE", "sometimes")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadSMTPPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "config-test-secret")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("SMTP_PORT", "abc")

	_, err := Load()
	assert.Error(t, err)
}
