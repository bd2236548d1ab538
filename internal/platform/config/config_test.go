package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 10*time.Minute, cfg.Redis.SuiteCacheTTL)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "docs/test_cases.json", cfg.Suite.Path)
	assert.Zero(t, cfg.Suite.Parallelism)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SLE_ADDR", ":9090")
	t.Setenv("SLE_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SUITE_CACHE_TTL", "30s")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:runs.db")
	t.Setenv("TEST_CASES_PATH", "/data/suite.yaml")
	t.Setenv("RUN_PARALLELISM", "4")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 30*time.Second, cfg.Redis.SuiteCacheTTL)
	assert.Equal(t, Database{Driver: "sqlite", DSN: "file:runs.db"}, cfg.Database)
	assert.Equal(t, Suite{Path: "/data/suite.yaml", Parallelism: 4}, cfg.Suite)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("RUN_PARALLELISM", "many")
	t.Setenv("SUITE_CACHE_TTL", "soon")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_PARALLELISM")
	assert.Contains(t, err.Error(), "SUITE_CACHE_TTL")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}
