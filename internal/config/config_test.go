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
	path := filepath.Join(t.TempDir(), "vlyx.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "two-hop", cfg.Resolver.Mode)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent)
	assert.Equal(t, int64(8<<20), cfg.HTTP.MaxBody)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Log.Debug)
	assert.Empty(t, cfg.Origins())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: "https://site.example/"
  origins:
    - "https://old.site.example"
resolver:
  mode: direct
  api_base: "https://api.example/resolve"
  api_key: "k"
http:
  timeout: 5s
server:
  port: 9999
unknown_setting: ignored
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "direct", cfg.Resolver.Mode)
	assert.Equal(t, "https://api.example/resolve", cfg.Resolver.APIBase)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent, "unset keys keep defaults")
	assert.Equal(t, []string{"https://site.example", "https://old.site.example"}, cfg.Origins())
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9999\n")
	t.Setenv("VLYX_SERVER_PORT", "7070")
	t.Setenv("VLYX_LOG_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Log.Debug)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		cfg := &Config{}
		cfg.Resolver.Mode = "two-hop"
		cfg.HTTP.Timeout = time.Second
		cfg.Server.Port = 8080
		return cfg
	}

	cfg := base()
	cfg.Resolver.Mode = "direct"
	assert.Error(t, cfg.Validate(), "direct mode needs an api base")
	cfg.Resolver.APIBase = "https://api.example"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Resolver.Mode = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.HTTP.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}
