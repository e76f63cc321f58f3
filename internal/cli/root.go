// Package cli implements the moneytracker command line: the HTTP server,
// the alert consumer, the prune scheduler and one-shot report and
// maintenance commands.
package cli

import (
	"github.com/spf13/cobra"

	"moneytracker/internal/config"
	"moneytracker/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "moneytracker",
	Short: "Personal finance tracker",
	Long: `moneytracker records expenses, income and savings goals, checks spending
against daily and monthly limits and produces monthly reports.

Configuration comes from a TOML file (--config or CONFIG_FILE), a .env file
and environment variables, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		LoadEnvFile()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the validated configuration and sets up logging for a
// command.
func loadConfig(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := LoadAndValidateConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, SetupLogger(cfg.LogLevel), nil
}

// openApp loads the configuration and bootstraps the tracker.
func openApp(cmd *cobra.Command, withAMQP bool) (*App, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return Bootstrap(cmd.Context(), cfg, logger, withAMQP)
}
