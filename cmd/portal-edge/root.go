package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/portal-edge/internal/config"
	"github.com/Sternrassler/portal-edge/pkg/logging"
)

// Version is set at build time
var Version = "0.1.0"

// cliOptions are the persistent flags shared by all commands.
type cliOptions struct {
	envFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "portal-edge",
		Short: "Edge service for the workspace portal",
		Long: `portal-edge sits in front of the workspace frontend.

It verifies sessions, applies the route access policy (login, onboarding,
workspace, admin) and proxies allowed requests upstream. The fetch and
decide commands exercise the API client and the policy from a terminal.`,
		Version:       Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "completion" || cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logging.Setup(cfg.Logging)
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file with configuration")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newDecideCmd())
	root.AddCommand(newFetchCmd(opts))
	return root
}
