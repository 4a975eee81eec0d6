package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
	assert.Equal(t, 4*time.Second, cfg.ChatPollInterval)
	assert.Equal(t, 7*time.Second, cfg.PeerPollInterval)
	assert.Equal(t, 1850*time.Millisecond, cfg.NotifyDuration)
	assert.Equal(t, TokenStoreChain, cfg.TokenStore)
	assert.Equal(t, filepath.Join(home, ".config", "pot", "config.toml"), cfg.Path)
	assert.Equal(t, filepath.Join(home, ".config", "pot", "pot.log"), cfg.LogFile)
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("POT_CHAT_POLL_INTERVAL", "2s")

	dir := filepath.Join(home, ".config", "pot")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	content := `[api]
base_url = "https://pot.example.com"

[chat]
poll_interval = "10s"

[dashboard]
preserve_unsaved_edits = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://pot.example.com", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.ChatPollInterval)
	assert.True(t, cfg.PreserveUnsavedEdits)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
		want string
	}{
		{name: "relative base url", env: "POT_API_BASE_URL", val: "localhost", want: "api.base_url"},
		{name: "negative interval", env: "POT_CHAT_POLL_INTERVAL", val: "-1s", want: "chat.poll_interval"},
		{name: "log format", env: "POT_LOG_FORMAT", val: "xml", want: "log.format"},
		{name: "token store", env: "POT_SESSION_TOKEN_STORE", val: "keyring", want: "session.token_store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv(tt.env, tt.val)

			_, err := Load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteRoundTripsThroughLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	cfg.APIBaseURL = "https://pot.example.com"
	cfg.PeerPollInterval = 9 * time.Second
	require.NoError(t, Write(cfg, false))

	info, err := os.Stat(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "https://pot.example.com", reloaded.APIBaseURL)
	assert.Equal(t, 9*time.Second, reloaded.PeerPollInterval)

	err = Write(cfg, false)
	require.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, Write(cfg, true))
}
