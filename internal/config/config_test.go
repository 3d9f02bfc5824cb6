package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "siteiq.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
	assert.InDelta(t, 10, cfg.Geocode.RateLimit, 0.001)
	assert.Equal(t, 30, cfg.Geocode.CacheTTLDays)
	assert.Equal(t, "geo_intent", cfg.Warehouse.Dataset)
	assert.Equal(t, 80, cfg.Warehouse.MaxRows)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.QueryModel)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 5000, cfg.Analyzers.DemographicRadiusM, 0.001)
	assert.InDelta(t, 2000, cfg.Analyzers.CompetitionRadiusM, 0.001)
	assert.InDelta(t, 3000, cfg.Analyzers.GapRadiusM, 0.001)
	assert.Equal(t, 10, cfg.Analyzers.ResultLimit)
	assert.Equal(t, 16, cfg.Analyzers.GridTiles)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/siteiq
log:
  level: debug
  format: console
server:
  port: 9090
analyzers:
  gap_radius_m: 4500
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/siteiq", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 4500, cfg.Analyzers.GapRadiusM, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 80, cfg.Warehouse.MaxRows)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SITEIQ_STORE_DRIVER", "postgres")
	t.Setenv("SITEIQ_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("SITEIQ_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadSecretsFromEnv(t *testing.T) {
	// Secrets have no default and no config-file entry; they must still
	// come through from the environment.
	chTempDir(t)

	t.Setenv("SITEIQ_WAREHOUSE_PROJECT_ID", "siteiq-prod")
	t.Setenv("SITEIQ_GEOCODE_GOOGLE_KEY", "maps-key")
	t.Setenv("SITEIQ_ANTHROPIC_KEY", "sk-ant-test")
	t.Setenv("SITEIQ_STORE_DATABASE_URL", "postgres://db/siteiq")
	t.Setenv("SITEIQ_ANTHROPIC_GENERATE_SQL", "true")
	t.Setenv("SITEIQ_GEOCODE_CACHE_DISABLED", "true")
	t.Setenv("SITEIQ_ANALYZERS_POLICY_FILE", "policy.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "siteiq-prod", cfg.Warehouse.ProjectID)
	assert.Equal(t, "maps-key", cfg.Geocode.GoogleKey)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
	assert.Equal(t, "postgres://db/siteiq", cfg.Store.DatabaseURL)
	assert.True(t, cfg.Anthropic.GenerateSQL)
	assert.True(t, cfg.Geocode.CacheDisabled)
	assert.Equal(t, "policy.yaml", cfg.Analyzers.PolicyFile)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
