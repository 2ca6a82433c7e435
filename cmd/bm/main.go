// Package main provides the bm CLI entry point.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TickyWill/BiblioMeter-sub001/internal/config"
	"github.com/TickyWill/BiblioMeter-sub001/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	logLevel    string
)

func main() {
	// A .env file next to the workspace may set BM_CONFIG and BM_LOG_LEVEL.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bm",
	Short: "Match publication authors to institute staff",
	Long: `bm attributes the authors of a publication corpus to institute staff.

Author rows are matched against year-indexed staff registries, most recent
year first, carrying unmatched rows back through older years. Manual
corrections and homonym choices are then overlaid, and rows of duplicate
publications are dropped.

Inputs and outputs are described in bibliometer.yml (or bibliometer.toml),
found by walking up from the current directory.
All commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to bibliometer.yml (default: search upward, or $BM_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error; default $BM_LOG_LEVEL)")
	rootCmd.Version = Version
}

// mustLoadConfig locates, loads and validates the workspace config, exits on error.
func mustLoadConfig() *config.Config {
	explicit := configPath
	if explicit == "" {
		explicit = os.Getenv("BM_CONFIG")
	}

	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	path, err := config.Locate(explicit, cwd)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config %s:\n%v", path, err)
	}
	return cfg
}

// mustLogger builds the stderr logger, exits on error.
func mustLogger(cfg *config.Config) *slog.Logger {
	level := logLevel
	if level == "" {
		level = os.Getenv("BM_LOG_LEVEL")
	}
	if level == "" {
		if global, err := config.LoadGlobalConfig(); err == nil {
			level = global.LogLevel
		}
	}
	logger, err := logging.NewFromConfig(cfg, os.Stderr, level)
	if err != nil {
		exitWithError(ExitConfigError, "configuring logging: %v", err)
	}
	return logger
}
