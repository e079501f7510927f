package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Slack     SlackConfig     `json:"slack"`
	Vision    VisionConfig    `json:"vision"`
	Database  DatabaseConfig  `json:"database"`
	Gateway   GatewayConfig   `json:"gateway"`
	Install   InstallConfig   `json:"install"`
	Heartbeat HeartbeatConfig `json:"heartbeat"`
	Caches    CachesConfig    `json:"caches"`
}

type SlackConfig struct {
	BotToken   string   `env:"SLACKSWEEP_SLACK_BOT_TOKEN"   json:"bot_token"`
	AppToken   string   `env:"SLACKSWEEP_SLACK_APP_TOKEN"   json:"app_token"`
	ExemptFrom []string `env:"SLACKSWEEP_SLACK_EXEMPT_FROM" json:"exempt_from,omitempty"`
}

// VisionConfig points at the content classification service.
type VisionConfig struct {
	APIKey         string `env:"SLACKSWEEP_VISION_API_KEY"         json:"api_key"`
	BaseURL        string `env:"SLACKSWEEP_VISION_BASE_URL"        json:"base_url"`
	TimeoutSeconds int    `env:"SLACKSWEEP_VISION_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" json:"url"`
}

type GatewayConfig struct {
	Host string `env:"SLACKSWEEP_GATEWAY_HOST" json:"host"`
	Port int    `env:"SLACKSWEEP_GATEWAY_PORT" json:"port"`
}

// InstallConfig configures the OAuth install server.
type InstallConfig struct {
	ClientID     string `env:"SLACK_CLIENT_ID"                 json:"client_id"`
	ClientSecret string `env:"SLACK_CLIENT_SECRET"             json:"client_secret"`
	RedirectURL  string `env:"SLACKSWEEP_INSTALL_REDIRECT_URL" json:"redirect_url,omitempty"`
	Addr         string `env:"SLACKSWEEP_INSTALL_ADDR"         json:"addr"`
}

type HeartbeatConfig struct {
	Enabled         bool   `env:"SLACKSWEEP_HEARTBEAT_ENABLED"  json:"enabled"`
	IntervalMinutes int    `env:"SLACKSWEEP_HEARTBEAT_INTERVAL" json:"interval"` // minutes, min 1
	MaintenanceCron string `env:"SLACKSWEEP_MAINTENANCE_CRON"   json:"maintenance_cron"`
}

// CachesConfig bounds the process-wide lookup caches.
type CachesConfig struct {
	EditTrackingSize int `env:"SLACKSWEEP_CACHES_EDIT_TRACKING_SIZE" json:"edit_tracking_size"`
	UserProfileSize  int `env:"SLACKSWEEP_CACHES_USER_PROFILE_SIZE"  json:"user_profile_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Vision: VisionConfig{
			BaseURL:        "https://api.uploadfilter.io",
			TimeoutSeconds: 10,
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 18791,
		},
		Install: InstallConfig{
			Addr: ":1323",
		},
		Heartbeat: HeartbeatConfig{
			Enabled:         true,
			IntervalMinutes: 15,
			MaintenanceCron: "0 * * * *",
		},
		Caches: CachesConfig{
			EditTrackingSize: 4096,
			UserProfileSize:  1024,
		},
	}
}

// LoadConfig reads the JSON config file (if present) and applies environment
// variable overrides on top. A missing file is not an error; env-only setups
// are supported.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only setup
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env overrides: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config as indented JSON, creating the directory if needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Validate checks the fields the gateway cannot run without.
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}
	if c.Slack.AppToken == "" {
		return fmt.Errorf("slack.app_token is required")
	}
	if c.Vision.APIKey == "" {
		return fmt.Errorf("vision.api_key is required")
	}
	return nil
}
