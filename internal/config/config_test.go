package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 30, cfg.Session.DefaultTTLMinutes)
	assert.Equal(t, "memory", cfg.Session.CacheDriver)
	assert.Equal(t, 7, cfg.Cleanup.RetentionDays)
	assert.True(t, cfg.Cleanup.SweepExpired)
	assert.Equal(t, "channel", cfg.Analytics.Transport)
	assert.Equal(t, "TRACK_EVENT", cfg.Analytics.TrackTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("SESSION_DEFAULT_TTL_MINUTES", "90")
	t.Setenv("CLEANUP_SWEEP_EXPIRED", "false")
	t.Setenv("TRACK_TRANSPORT", "nats")
	t.Setenv("SESSION_CACHE_DRIVER", "redis")

	cfg := Load()

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, 90, cfg.Session.DefaultTTLMinutes)
	assert.False(t, cfg.Cleanup.SweepExpired)
	assert.Equal(t, "nats", cfg.Analytics.Transport)
	assert.Equal(t, "redis", cfg.Session.CacheDriver)
}

func TestLoadIgnoresGarbageValues(t *testing.T) {
	t.Setenv("SESSION_DEFAULT_TTL_MINUTES", "not-a-number")
	t.Setenv("CLEANUP_RETENTION_DAYS", "")
	t.Setenv("CLEANUP_SWEEP_EXPIRED", "maybe")

	cfg := Load()

	assert.Equal(t, 30, cfg.Session.DefaultTTLMinutes)
	assert.Equal(t, 7, cfg.Cleanup.RetentionDays)
	assert.True(t, cfg.Cleanup.SweepExpired)
}
