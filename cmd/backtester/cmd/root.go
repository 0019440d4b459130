// Package cmd implements the backtester CLI.
package cmd

import (
	"log/slog"

	"aibacktest/internal/config"
	"aibacktest/internal/logging"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "AI-advised single-instrument backtest engine",
	Long: `backtester replays a schedule of trading dates against cached price
data, asks an external recommendation oracle for a decision on each date,
normalizes that decision through a bounded override policy, executes it
against a simulated portfolio and reports performance metrics.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}

// loadConfig builds the config and logger shared by all subcommands.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, log, nil
}
