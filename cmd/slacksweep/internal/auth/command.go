package auth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal"
	"github.com/tinyland-inc/slacksweep/pkg/auth"
	"github.com/tinyland-inc/slacksweep/pkg/config"
)

func NewAuthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Store Slack and classifier credentials in the local config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authCmd()
		},
	}
}

func authCmd() error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	botToken, err := auth.PasteCredential("Slack bot token (xoxb-...)", os.Stdin)
	if err != nil {
		return err
	}
	appToken, err := auth.PasteCredential("Slack app-level token (xapp-...)", os.Stdin)
	if err != nil {
		return err
	}
	visionKey, err := auth.PasteCredential("classification service API key", os.Stdin)
	if err != nil {
		return err
	}

	cfg.Slack.BotToken = botToken
	cfg.Slack.AppToken = appToken
	cfg.Vision.APIKey = visionKey

	path := internal.GetConfigPath()
	if err := config.SaveConfig(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Credentials saved to %s\n", path)
	return nil
}
