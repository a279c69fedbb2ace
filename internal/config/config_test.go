package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WACONSOLE_API_BASEURL", "https://backend.example/api/")
	t.Setenv("WACONSOLE_REALTIME_URL", "wss://push.example/ws")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example/api", cfg.API.BaseURL)
	assert.Equal(t, "wss://push.example/ws", cfg.Realtime.URL)
	assert.Equal(t, "chat-channel", cfg.Realtime.Channel)
	assert.Equal(t, "new-message", cfg.Realtime.Event)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(50*1024*1024), cfg.Media.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
logLevel: debug
api:
  baseURL: https://backend.example/api
  bearerToken: secret
realtime:
  url: wss://push.example/ws
  channel: other-channel
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "waconsole.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "secret", cfg.API.BearerToken)
	assert.Equal(t, "other-channel", cfg.Realtime.Channel)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.baseURL")
}
