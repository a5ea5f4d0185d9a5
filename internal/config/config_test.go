package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_user_id: 42
purge:
  batch_size: 50
  grace_period: 5s
scheduler:
  tasks:
    sql_maintenance:
      enabled: false
      schedule: ""
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "123:abc", cfg.Telegram.Token)
	require.Equal(t, int64(42), cfg.Telegram.AdminUserID)
	require.Equal(t, 50, cfg.Purge.BatchSize)
	require.Equal(t, 5*time.Second, cfg.Purge.GracePeriod)

	// Untouched keys keep their defaults.
	require.Equal(t, DefaultPurgePageSize, cfg.Purge.PageSize)
	require.Equal(t, DefaultPurgeTimeout, cfg.Purge.Timeout)
	require.Equal(t, DefaultDBRetention, cfg.Database.Retention)
	require.Equal(t, DefaultLogLevel, cfg.Logger.Level)
	require.Contains(t, cfg.Messages.PurgeCompleteMsg, "%d")
	require.False(t, cfg.TranslationEnabled())

	require.False(t, cfg.Scheduler.Tasks["sql_maintenance"].Enabled)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("BOT_TELEGRAM_ADMIN_USER_ID", "7")
	t.Setenv("BOT_PURGE_BATCH_SIZE", "10")
	t.Setenv("BOT_GEMINI_API_KEY", "key")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, "env-token", cfg.Telegram.Token)
	require.Equal(t, int64(7), cfg.Telegram.AdminUserID)
	require.Equal(t, 10, cfg.Purge.BatchSize)
	require.True(t, cfg.TranslationEnabled())
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing token",
			body: "telegram:\n  admin_user_id: 42\n",
		},
		{
			name: "batch size above telegram limit",
			body: "telegram:\n  token: t\n  admin_user_id: 42\npurge:\n  batch_size: 101\n",
		},
		{
			name: "zero batch size",
			body: "telegram:\n  token: t\n  admin_user_id: 42\npurge:\n  batch_size: 0\n",
		},
		{
			name: "negative grace period",
			body: "telegram:\n  token: t\n  admin_user_id: 42\npurge:\n  grace_period: -1s\n",
		},
		{
			name: "completion notice without count",
			body: "telegram:\n  token: t\n  admin_user_id: 42\nmessages:\n  purge_complete_msg: done\n",
		},
		{
			name: "bad log level",
			body: "telegram:\n  token: t\n  admin_user_id: 42\nlogger:\n  level: loud\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "telegram: [unclosed"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrValidation)
}
