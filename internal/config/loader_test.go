package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coscheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: test
pubchem:
  batch_delay: 2s
match:
  cas_policy: exact
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "exact", cfg.Match.CASPolicy)
	// Defaults fill the rest.
	assert.Equal(t, DefaultPubChemBaseURL, cfg.PubChem.BaseURL)
	assert.Len(t, cfg.Sources.Annexes, 5)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := writeConfigFile(t, `
server:
  mode: production
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "server.mode")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COSCHECK_SERVER_PORT", "1234")
	t.Setenv("COSCHECK_LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestMustLoadPanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
