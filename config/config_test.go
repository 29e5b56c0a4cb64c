package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: debug\njwt:\n  secret: s3cret\nrealtime:\n  send_buffer: 8\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 8, cfg.Realtime.SendBuffer)
	assert.Equal(t, 25*time.Second, cfg.Realtime.PingInterval)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadRequiresSecretInRelease(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}
