// Package commands implements the rewardsctl command tree.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rewards/internal/cli"
	"rewards/internal/config"
	applog "rewards/internal/log"
)

type rootOptions struct {
	envFile  string
	logLevel string
	logger   *applog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "rewardsctl",
		Short: "Administer the loyalty reward points service",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.LoadEnvFile(opts.envFile)
			level := opts.logLevel
			if level == "" {
				level = config.Load().LogLevel
			}
			opts.logger = cli.SetupLogger(applog.ComponentCLI, level)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error); defaults to LOG_LEVEL")

	rootCmd.AddCommand(
		newImportCommand(opts),
		newSummaryCommand(opts),
		newMigrateCommand(opts),
	)
	return rootCmd
}

// loadConfig reads the environment and validates it without exiting, so
// commands report problems through cobra.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}
