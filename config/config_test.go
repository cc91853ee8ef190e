package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigurationDefaults(t *testing.T) {
	cfg, err := ReadConfiguration("", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAddr, cfg.HTTPConfig.Addr)
	assert.Equal(t, "sqlite", cfg.PersistenceConfig.Type)
	assert.Equal(t, ":memory:", cfg.SessionConfig.Path)
	assert.Equal(t, "sessionid", cfg.SessionConfig.CookieName)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionConfig.MaxAge)
	assert.Equal(t, int64(10<<20), cfg.StorageConfig.MaxUploadSize)
	assert.Equal(t, 256, cfg.UserCacheSize)
}

func TestReadConfigurationDirectory(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "a.toml"), []byte(`
log_level = "INFO"

[persistence]
type = "postgres"
dsn = "host=localhost dbname=rooms"
`), 0o600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "b.toml"), []byte(`
[session]
max_age = "2h"

[[oidc]]
name = "google"
client_id = "abc"
provider_url = "https://accounts.google.com"
`), 0o600)
	require.NoError(t, err)

	cfg, err := ReadConfiguration(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.PersistenceConfig.Type)
	assert.Equal(t, "host=localhost dbname=rooms", cfg.PersistenceConfig.DSN)
	assert.Equal(t, 2*time.Hour, cfg.SessionConfig.MaxAge)
	require.NotNil(t, cfg.OIDCConfig("google"))
	assert.Equal(t, "abc", cfg.OIDCConfig("google").ClientId)
	assert.Nil(t, cfg.OIDCConfig("github"))
}

func TestReadConfigurationFlagsWin(t *testing.T) {
	flagSet := GetFlagSet()
	require.NoError(t, flagSet.Parse([]string{"--http.addr", ":9999", "--log-level", "WARN"}))
	cfg, err := ReadConfiguration("", flagSet)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPConfig.Addr)
	assert.Equal(t, "WARN", cfg.LogLevel)
}

func TestReadConfigurationMissingFile(t *testing.T) {
	_, err := ReadConfiguration(filepath.Join(t.TempDir(), "nope.toml"), nil)
	assert.Error(t, err)
}

func TestRedactedHidesDSN(t *testing.T) {
	cfg := Config{PersistenceConfig: PersistenceConfig{Type: "postgres", DSN: "host=db user=rooms password=secret"}}
	redacted := cfg.redacted()
	assert.Equal(t, redactedValue, redacted.PersistenceConfig.DSN)
	assert.NotContains(t, fmt.Sprintf("%+v", redacted), "secret")
	assert.Equal(t, "host=db user=rooms password=secret", cfg.PersistenceConfig.DSN)
}
