package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/modsync/internal/config"
	"github.com/NamanBalaji/modsync/internal/logger"
	"github.com/NamanBalaji/modsync/internal/repository"
)

var (
	cfgFile string
	debug   bool
	logFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "modsync",
	Short: "Keep a directory in sync with a remote file manifest",
	Long: `modsync downloads every file listed in a manifest into a destination
directory, verifies each one against its digest, and removes files the
manifest no longer lists from the directories it manages.

Examples:
  modsync sync -m https://example.com/mods.json -d ~/games/mods
  modsync sync --tui                # Use destination and manifest from config
  modsync status                    # Show the last recorded run
  modsync history                   # List recorded runs
  modsync hash ./addons/a.pbo       # Print a file digest`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/modsync)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file instead of stderr")
}

// Execute runs the root command.
func Execute() error {
	defer logger.Close()

	return rootCmd.Execute()
}

// initConfig loads the config file and sets up logging before any command runs.
func initConfig(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}

	c, err := config.GetConfigFrom(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg = c

	if logFile == "" {
		logFile = cfg.LogFile
	}

	if err := logger.InitLogging(debug, logFile); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logger.Debugf("Using config %s", path)

	return nil
}

// openHistory opens the run history database, creating its directory.
func openHistory() (*repository.BboltRepository, error) {
	err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return repository.NewBboltRepository(cfg.HistoryFile)
}
