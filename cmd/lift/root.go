// ABOUTME: Root Cobra command for lift CLI.
// ABOUTME: Loads config, sets up logging, and manages the store lifecycle via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/catalog"
	"github.com/harperreed/lift/internal/config"
	"github.com/harperreed/lift/internal/logging"
	"github.com/harperreed/lift/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	cfg       *config.Config
	store     *storage.DB
	logCloser io.Closer

	dataDirFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:     "lift",
	Short:   "Strength training log",
	Version: version,
	Long: `Lift is a CLI tool for logging strength training.

It keeps an exercise catalog, your workouts, and reusable templates in a
local SQLite database.

QUICK START:

  $ lift catalog search bench              # Find an exercise
  $ lift workout start "Push Day"          # Start a workout
  $ lift workout add bench-press --previous
  $ lift workout set add <exercise-id> --weight 80 --reps 5 --done
  $ lift workout current                   # See sets and last time's numbers
  $ lift workout finish                    # Finish the workout

TEMPLATES:

  $ lift template create "Legs"
  $ lift template add <template-id> barbell-squat --sets 3 --reps 6-8
  $ lift workout start --template <template-id>

IMPORT AND EXPORT:

  $ lift csv parse hevy_workouts.csv       # Inspect a Hevy export
  $ lift export json -o backup.json        # Back up everything
  $ lift import backup.json                # Restore a backup

MCP INTEGRATION:

  Run 'lift mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "lift": { "command": "lift", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  The database lives at ~/.local/share/lift/lift.db and preferences in
  ~/.local/share/lift/prefs. Settings are read from
  ~/.config/lift/config.toml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}

		logCloser = logging.Setup(logging.Params{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			File:   config.ExpandPath(cfg.LogFile),
		})

		store, err = cfg.OpenStore(cmd.Context())
		if err != nil {
			return err
		}

		if err := ensureCatalog(cmd.Context()); err != nil {
			fmt.Fprintln(os.Stderr, color.YellowString("⚠ Exercise catalog import failed, will retry next run: %v", err))
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

// ensureCatalog runs the one-time catalog import. The preference store is
// held only for the duration of the check so other processes can open it.
// Notices go to stderr since stdout carries the MCP protocol.
func ensureCatalog(ctx context.Context) error {
	flags, err := cfg.OpenPrefs()
	if err != nil {
		return err
	}
	defer flags.Close()

	n, err := catalog.EnsureImported(ctx, store, flags, logrus.WithField("component", "catalog"))
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintln(os.Stderr, color.GreenString("✓ Imported %d exercises into the catalog", n))
	}
	return nil
}

func closeStore() error {
	var err error
	if store != nil {
		err = store.Close()
		store = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default: ~/.local/share/lift)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: trace, debug, info, warn, error")
}
