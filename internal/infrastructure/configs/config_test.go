package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "static")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, 20, cfg.Game.MaxNameLength)
	assert.Equal(t, 20*time.Second, cfg.Game.JudgeTimeout)
	assert.Equal(t, uint(1000), cfg.RoomStore.Capacity)
	assert.Equal(t, time.Hour, cfg.RoomStore.IdleExpiry)
	assert.Equal(t, "memory", cfg.RateLimiter.Backend)
	assert.False(t, cfg.Game.RequireDrawingDone)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9000
game:
  require_drawing_done: true
  judge_timeout: 5s
llm:
  provider: static
room_store:
  capacity: 3
`)
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(9100), cfg.HTTP.Port)
	assert.True(t, cfg.Game.RequireDrawingDone)
	assert.Equal(t, 5*time.Second, cfg.Game.JudgeTimeout)
	assert.Equal(t, uint(3), cfg.RoomStore.Capacity)
}

func TestLoad_ProviderNeedsKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAIAPIKey)
}

func TestLoad_InvalidProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude-on-a-toaster")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
