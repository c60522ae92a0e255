package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Lifts.Backend)
	assert.Equal(t, time.Hour, cfg.Maintenance.Interval)
	assert.True(t, cfg.Maintenance.Enabled)
	assert.Equal(t, "Europe/Belgrade", cfg.Shop.Timezone)
	assert.False(t, cfg.Storage.S3.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("LIFTS_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("MAINTENANCE_INTERVAL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_JWT_SECRET", "s3cr3t")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "redis", cfg.Lifts.Backend)
	assert.Equal(t, "cache:6379", cfg.Lifts.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Maintenance.Interval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CorsAllowedOrigins)
	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
shop:
  name: "AUTO TEST"
lifts:
  backend: memory
storage:
  s3:
    enabled: true
    bucket: reports
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "AUTO TEST", cfg.Shop.Name)
	assert.Equal(t, "memory", cfg.Lifts.Backend)
	assert.Equal(t, "reports", cfg.Storage.S3.Bucket)
	assert.Equal(t, "daily-reports/", cfg.Storage.S3.Prefix)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		var c Config
		c.Lifts.Backend = "sqlite"
		c.Maintenance.Interval = time.Hour
		return &c
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.Lifts.Backend = "etcd"
	assert.ErrorContains(t, c.Validate(), "unknown lifts backend")

	c = valid()
	c.Maintenance.Interval = 0
	assert.ErrorContains(t, c.Validate(), "interval must be positive")

	c = valid()
	c.Storage.S3.Enabled = true
	assert.ErrorContains(t, c.Validate(), "bucket is required")
}
