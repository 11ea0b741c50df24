package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  rate_limit_per_sec: 25
  cache_ttl_seconds: 120
database:
  dsn: host=localhost user=app dbname=fieldops
push:
  vapid_public_key: pub
  vapid_private_key: priv
  subject: mailto:ops@example.com
worker_pool:
  size: 4
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 2*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3600, cfg.Push.TTL)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: host=localhost
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
