// Package cmd implements the learnsphere command line
package cmd

import (
	"fmt"

	"github.com/learnsphere/client/internal/config"
	"github.com/learnsphere/client/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "learnsphere",
	Short: "LearnSphere client companion",
	Long: `learnsphere keeps the client session of the LearnSphere platform, mirrors it to
local storage and serves the JSON gateway used by the UI shell to log in, browse
courses and drive the lecture player.`,
	SilenceUsage: true,
}

var logLevel string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}

// loadConfig loads the configuration and initializes the logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
