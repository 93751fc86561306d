package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	require.Equal(t, 20, cfg.Redis.PoolSize)
	require.Equal(t, "@every 1h", cfg.Tracking.HousekeepingSpec)
	require.Equal(t, "tracking_fuzzy_match", cfg.Tracking.FuzzyFlag)
	require.Equal(t, []string{"*"}, cfg.Server.CorsOrigins)
	require.Equal(t, 30*time.Second, cfg.Flagsmith.CacheTTL)
}

func TestLoadCorsOriginsFromEnv(t *testing.T) {
	t.Setenv("HTTP_SERVER_CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CorsOrigins)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("APP_ENV: staging\nREDIS:\n  ADDR: redis:6379\n  DB: 2\nHTTP_SERVER:\n  READ_TIMEOUT: 3s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("REDIS_ADDR", "10.0.0.5:6380")

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)

	require.Equal(t, "staging", cfg.AppEnv)
	require.Equal(t, "10.0.0.5:6380", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadRejectsIncompleteTLS(t *testing.T) {
	t.Setenv("TLS_ENABLE", "true")

	_, err := load(viper.New(), t.TempDir())
	require.Error(t, err)
}
