package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.uploadfilter.io", cfg.Vision.BaseURL)
	assert.Equal(t, 10, cfg.Vision.TimeoutSeconds)
	assert.Equal(t, 15, cfg.Heartbeat.IntervalMinutes)
	assert.Equal(t, "0 * * * *", cfg.Heartbeat.MaintenanceCron)
	assert.Positive(t, cfg.Caches.EditTrackingSize)
	assert.Positive(t, cfg.Caches.UserProfileSize)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("SLACKSWEEP_SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("SLACKSWEEP_VISION_API_KEY", "vkey")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "xoxb-env", cfg.Slack.BotToken)
	assert.Equal(t, "vkey", cfg.Vision.APIKey)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveConfig(path, &Config{
		Slack:  SlackConfig{BotToken: "xoxb-file", AppToken: "xapp-file"},
		Vision: VisionConfig{APIKey: "filekey", BaseURL: "https://file"},
	}))

	t.Setenv("SLACKSWEEP_VISION_API_KEY", "envkey")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "xoxb-file", cfg.Slack.BotToken)
	assert.Equal(t, "envkey", cfg.Vision.APIKey, "env must win over file")
	assert.Equal(t, "https://file", cfg.Vision.BaseURL)
}

func TestSaveConfig_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	in := DefaultConfig()
	in.Slack.BotToken = "xoxb-rt"
	in.Slack.ExemptFrom = []string{"U1", "@U2"}
	require.NoError(t, SaveConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in.Slack.BotToken, out.Slack.BotToken)
	assert.Equal(t, in.Slack.ExemptFrom, out.Slack.ExemptFrom)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.Slack.BotToken = "xoxb"
	cfg.Slack.AppToken = "xapp"
	cfg.Vision.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}
