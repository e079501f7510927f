package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal/auth"
	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal/gateway"
	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal/install"
	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal/version"
)

func NewSlacksweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "slacksweep",
		Short:   "slacksweep - Slack NSFW moderation gateway",
		Example: "slacksweep gateway",
	}

	cmd.AddCommand(
		gateway.NewGatewayCommand(),
		install.NewInstallCommand(),
		auth.NewAuthCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewSlacksweepCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
