package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/results.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Extract.LegacyYearPrefix)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
storage:
  database_path: /tmp/test.db
extract:
  legacy_year_prefix: "2019/"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "2019/", cfg.Extract.LegacyYearPrefix)
	// Untouched fields keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("RESULT_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_MissingNamedFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	t.Setenv("RESULT_SERVER_PORT", "0")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoad_InvalidBcryptCostRejected(t *testing.T) {
	t.Setenv("RESULT_AUTH_BCRYPT_COST", "99")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt")
}
