package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/internal/server"
	"github.com/agentstation/rankmap/pkg/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"PORT", "HTTP_PORT", "HTTP_HOST", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultManifestPath, cfg.ManifestPath)
	assert.Equal(t, DefaultArtifactPath, cfg.ArtifactPath)
	assert.Equal(t, DefaultSQLitePath, cfg.SQLitePath)
	assert.True(t, cfg.Coverage)
	assert.False(t, cfg.AutoRebuild)
	assert.Equal(t, constants.DefaultRebuildInterval, cfg.AutoRebuildInterval)

	d := server.DefaultConfig()
	assert.Equal(t, d.Port, cfg.Server.Port)
	assert.Equal(t, d.PathPrefix, cfg.Server.PathPrefix)
	assert.Equal(t, d.RateLimit, cfg.Server.RateLimit)
	assert.Equal(t, d.CacheTTL, cfg.Server.CacheTTL)
	assert.True(t, cfg.Server.MetricsEnabled)
}

func TestLoadConfigEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANKMAP_MANIFEST", "/etc/rankmap/manifest.yaml")
	t.Setenv("RANKMAP_COVERAGE", "false")
	t.Setenv("RANKMAP_AUTO_REBUILD_INTERVAL", "6h")
	t.Setenv("RANKMAP_SERVER_RATE_LIMIT", "7")
	t.Setenv("RANKMAP_API_KEY", "secret")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/rankmap/manifest.yaml", cfg.ManifestPath)
	assert.False(t, cfg.Coverage)
	assert.Equal(t, 6*time.Hour, cfg.AutoRebuildInterval)
	assert.Equal(t, 7, cfg.Server.RateLimit)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.EnvLogLevel)
	assert.Empty(t, cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rankmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
artifact: /var/lib/rankmap/colleges.yaml
auto_rebuild: true
server:
  port: 8181
  prefix: /v2
  cors_origins: [https://example.com]
log:
  level: warn
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "/var/lib/rankmap/colleges.yaml", cfg.ArtifactPath)
	assert.True(t, cfg.AutoRebuild)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "/v2", cfg.Server.PathPrefix)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "warn", cfg.EnvLogLevel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "yaml"}
	cfg.UpdateFromFlags(true, false, true, "", "trace")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "yaml", cfg.Format, "empty flag keeps configured format")
	assert.Equal(t, "trace", cfg.LogLevel)

	cfg.UpdateFromFlags(false, false, false, "json", "")
	assert.Equal(t, "json", cfg.Format)
}
