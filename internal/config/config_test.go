package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "weekly", cfg.ReportSchedule)
	assert.Equal(t, "static", cfg.StatsMode)
	assert.Equal(t, "none", cfg.StorageBackend)
	assert.Equal(t, "https://vk.com/kprfkomi", cfg.ProfileURL)
	assert.True(t, cfg.SeedMentions)
	assert.Equal(t, []string{"КПРФ Коми", "kprfkomi"}, cfg.Keywords)
	assert.Equal(t, 1000, cfg.AlertEngagementThreshold)
	assert.Equal(t, 96, cfg.SnapshotRetention)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KEYWORDS", " kprf , , komi ")
	t.Setenv("STATS_MODE", "Derived")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SNAPSHOT_RETENTION", "0")
	t.Setenv("SEED_MENTIONS", "false")
	t.Setenv("TEAMS_WEBHOOK_URL", "https://example.invalid/hook")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"kprf", "komi"}, cfg.Keywords)
	assert.Equal(t, "derived", cfg.StatsMode)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 0, cfg.SnapshotRetention)
	assert.False(t, cfg.SeedMentions)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Unknown report schedule", map[string]string{"REPORT_SCHEDULE": "hourly"}},
		{"Unknown stats mode", map[string]string{"STATS_MODE": "random"}},
		{"Unknown storage backend", map[string]string{"STORAGE_BACKEND": "s3"}},
		{"Azure without account", map[string]string{"STORAGE_BACKEND": "azure"}},
		{"Email without SMTP", map[string]string{"NOTIFICATION_EMAIL": "press@example.org"}},
		{"Bad time zone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"Non-positive rate limit", map[string]string{"VK_RATE_LIMIT": "-1"}},
		{"Negative snapshot retention", map[string]string{"SNAPSHOT_RETENTION": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
