package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "jwt_secret: s3cret\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2333, cfg.Port)
	require.True(t, cfg.IsDev())
	require.Equal(t, 20, cfg.AI.QuotaMaxCalls)
	require.Equal(t, time.Hour, cfg.AI.QuotaWindow.Std())
	require.Equal(t, 24*time.Hour, cfg.AI.CacheTTL.Std())
	require.Equal(t, 10*time.Second, cfg.AI.RequestTimeout.Std())
	require.Equal(t, 2, cfg.AI.MaxRetries)
	require.Equal(t, 500*time.Millisecond, cfg.AI.RetryBackoff.Std())
	require.Equal(t, 5, cfg.AI.BatchConcurrency)
	require.True(t, cfg.AI.EnableSummary)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: production
ai:
  quota_max_calls: 5
  quota_window: 30m
  cache_ttl: 1h
  providers:
    - id: main
      type: anthropic
      api_key: sk-ant-test
      default_model: claude-haiku-4-5-20251001
      enabled: true
  summary_model:
    provider_id: main
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.IsDev())
	require.Equal(t, 5, cfg.AI.QuotaMaxCalls)
	require.Equal(t, 30*time.Minute, cfg.AI.QuotaWindow.Std())
	require.Equal(t, time.Hour, cfg.AI.CacheTTL.Std())
	require.Len(t, cfg.AI.Providers, 1)
	require.Equal(t, "main", cfg.AI.Providers[0].ID)
	require.NotNil(t, cfg.AI.SummaryModel)
	require.Equal(t, "main", cfg.AI.SummaryModel.ProviderID)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "prot: 8080\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestValidateBounds(t *testing.T) {
	cases := []string{
		"port: 0\n",
		"port: 70000\n",
		"database:\n  port: 0\n",
		"ai:\n  quota_max_calls: 0\n",
		"ai:\n  quota_window: 0s\n",
		"ai:\n  cache_capacity: 0\n",
		"ai:\n  max_retries: -1\n",
		"ai:\n  batch_concurrency: 0\n",
	}
	for _, raw := range cases {
		path := writeConfig(t, raw)
		_, err := Load(path)
		require.Error(t, err, "config %q must fail validation", raw)
	}
}

func TestDSN(t *testing.T) {
	cfg := Default()
	cfg.Database = DatabaseConfig{
		Host:     "db.internal",
		Port:     3307,
		User:     "svc",
		Password: "pw",
		Name:     "notes",
		Charset:  "utf8mb4",
		Loc:      "Local",
	}
	require.Equal(t,
		"svc:pw@tcp(db.internal:3307)/notes?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN(),
	)
}

func TestRedisURL(t *testing.T) {
	cfg := Default()
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL())

	cfg.Redis.Password = "pw"
	cfg.Redis.DB = 2
	require.Equal(t, "redis://:pw@localhost:6379/2", cfg.RedisURL())

	cfg.Redis.URL = "redis://explicit:6380/1"
	require.Equal(t, "redis://explicit:6380/1", cfg.RedisURL())
}
