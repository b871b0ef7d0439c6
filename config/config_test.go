package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("USERS_API_URL", "")
	os.Unsetenv("USERS_API_URL")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "https://67da405935c87309f52ba22e.mockapi.io/users", cfg.BaseURL)
	assert.Equal(t, "users.log", cfg.LogFile)
	assert.Equal(t, "users.xlsx", cfg.ExportPath)
}

func TestLoadServer_FromEnv(t *testing.T) {
	t.Setenv("USERSAPI_ADDR", ":9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("USERSAPI_SEED", "false")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.Seed)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
}

func TestLoadServer_BadValue(t *testing.T) {
	t.Setenv("REDIS_DB", "eight")

	_, err := LoadServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("USERS_EXPORT_PATH=out.xlsx\n"), 0o600))
	t.Setenv("USERS_EXPORT_PATH", "")
	os.Unsetenv("USERS_EXPORT_PATH")

	require.NoError(t, LoadDotenv(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "out.xlsx", cfg.ExportPath)
}
