package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsWithMocks(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, uint(3), cfg.ScreenerConnectorCfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.ScreenerConnectorCfg.Retry.Delay)
	assert.Equal(t, "/submit_answer", cfg.ScreenerConnectorCfg.SubmitAnswerEndpoint)
	assert.Equal(t, "Kore", cfg.ChatConnectorCfg.Voice)
	assert.Equal(t, "en-US", cfg.ChatConnectorCfg.Language)
	assert.False(t, cfg.IdentityCfg.Configured())
}

func TestParsePrefixedOverrides(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("CHAT_RETRY_ATTEMPTS", "5")
	t.Setenv("CHAT_RETRY_DELAY", "250ms")
	t.Setenv("SUPABASE_URL", "https://id.example.com")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, uint(5), cfg.ChatConnectorCfg.Retry.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.ChatConnectorCfg.Retry.Delay)
	assert.True(t, cfg.IdentityCfg.Configured())
}

func TestParseRequiresBackendsWithoutMocks(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "false")
	t.Setenv("SCREENER_SERVICE_URL", "")
	t.Setenv("CHAT_SERVICE_URL", "")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCREENER_SERVICE_URL")
	assert.Contains(t, err.Error(), "CHAT_SERVICE_URL")
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
