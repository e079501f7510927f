package internal

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tinyland-inc/slacksweep/pkg/config"
)

var (
	version   = "dev"
	gitCommit string
)

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".slacksweep", "config.json")
}

// LoadConfig loads .env (if present), then the JSON config file, then env
// overrides.
func LoadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.LoadConfig(GetConfigPath())
}

// GetVersion returns the version string with optional git commit.
func GetVersion() string {
	v := version
	if gitCommit != "" {
		v += " (git: " + gitCommit + ")"
	}
	return v
}
