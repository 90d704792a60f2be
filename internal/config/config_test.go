package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, BackendFile, cfg.ArchiveBackend)
	assert.Equal(t, 10, cfg.MaxActiveSessions)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("redis backend needs an address", func(t *testing.T) {
		cfg := Default()
		cfg.ArchiveBackend = BackendRedis
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis_addr")

		cfg.RedisAddr = "localhost:6379"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("file backend needs a directory", func(t *testing.T) {
		cfg := Default()
		cfg.ArchiveDir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := Default()
		cfg.ArchiveBackend = "tape"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown archive backend")
	})

	t.Run("session cap must be positive", func(t *testing.T) {
		cfg := Default()
		cfg.MaxActiveSessions = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("full workflow block", func(t *testing.T) {
		path := writeConfig(t, `
workflow "acceptance" {
  graph_path          = "graphs/qa.json"
  results_dir         = "out/results"
  archive_backend     = "redis"
  redis_addr          = "redis.internal:6379"
  driver_url          = "http://agent:8080"
  max_active_sessions = 3
  log_level           = "debug"
  log_format          = "json"
}
`)
		cfg, err := Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "acceptance", cfg.Name)
		assert.Equal(t, "graphs/qa.json", cfg.GraphPath)
		assert.Equal(t, "out/results", cfg.ResultsDir)
		assert.Equal(t, BackendRedis, cfg.ArchiveBackend)
		assert.Equal(t, "redis.internal:6379", cfg.RedisAddr)
		assert.Equal(t, "http://agent:8080", cfg.DriverURL)
		assert.Equal(t, 3, cfg.MaxActiveSessions)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unset attributes keep defaults", func(t *testing.T) {
		path := writeConfig(t, `
workflow "minimal" {
  results_dir = "out"
}
`)
		cfg, err := Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "minimal", cfg.Name)
		assert.Equal(t, "out", cfg.ResultsDir)
		assert.Equal(t, BackendFile, cfg.ArchiveBackend)
		assert.Equal(t, 10, cfg.MaxActiveSessions)
	})

	t.Run("env references resolve", func(t *testing.T) {
		t.Setenv("PHASEGRID_TEST_REDIS", "envhost:6379")
		path := writeConfig(t, `
workflow "fromenv" {
  archive_backend = "redis"
  redis_addr      = env.PHASEGRID_TEST_REDIS
}
`)
		cfg, err := Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "envhost:6379", cfg.RedisAddr)
	})

	t.Run("missing workflow block falls back to defaults", func(t *testing.T) {
		path := writeConfig(t, ``)
		cfg, err := Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeConfig(t, `workflow "broken" {`)
		_, err := Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Error(t, err)
	})
}
