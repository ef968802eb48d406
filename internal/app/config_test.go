package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, time.Minute, cfg.AdminCacheRefresh)
	assert.Equal(t, "/auth/signin", cfg.SignInPath)
	assert.Equal(t, "/unauthorized", cfg.UnauthorizedPath)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("APP_ENV", "production")

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("APP_ENV=staging\nSIGNIN_PATH=/login\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SIGNIN_PATH") })

	cfg, err := LoadConfig(file)
	require.NoError(t, err)

	assert.Equal(t, "/login", cfg.SignInPath)
	assert.True(t, cfg.IsProduction(), "process environment wins over .env")
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "c")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
