package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
database:
  driver: postgres
  host: db.local
  port: 5432
  dbname: examhub
scheduler:
  enabled: true
  interval_seconds: 15
sync:
  notify_channel: assignments
cors:
  allowed_origins:
    - http://localhost:3000
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "examhub", cfg.Database.DBName)
	assert.Equal(t, 15*time.Second, cfg.Scheduler.Interval())
	assert.Equal(t, "assignments", cfg.Sync.NotifyChannel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)

	// 未配置的项使用默认值
	assert.Equal(t, 30*time.Second, cfg.Sync.LockTTL())
	assert.Equal(t, "logs/app.log", cfg.Log.File)
	assert.Equal(t, 1000, cfg.RateLimit.MaxRequests)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: mysql
  host: from-file
`)
	t.Setenv("DATABASE_HOST", "from-env")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short secret in release", "server:\n  mode: release\njwt:\n  secret: short\n"},
		{"unknown driver", "database:\n  driver: oracle\n"},
		{"non-positive interval", "scheduler:\n  enabled: true\n  interval_seconds: 0\n"},
		{"zero lock wait", "sync:\n  lock_wait_seconds: 0\n"},
		{"zero lock ttl", "sync:\n  lock_ttl_seconds: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
