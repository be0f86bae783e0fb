package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strongbox/internal/app"
	"github.com/mesh-intelligence/strongbox/internal/logging"
	"github.com/mesh-intelligence/strongbox/internal/paths"
	"github.com/mesh-intelligence/strongbox/internal/tui"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// Resolved by PersistentPreRunE for every subcommand.
var (
	configDir string
	cfg       types.Config
)

var rootCmd = &cobra.Command{
	Use:           "strongbox",
	Short:         "Strongbox is an encrypted, offline epic and story tracker",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		configDir = dir
		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		c, err := resolveConfig(v)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := openLogFile()
		if err != nil {
			return err
		}
		defer closer.Close()

		st := openStore(logger)
		d := app.NewDispatcher(st,
			app.WithLogger(logger),
			app.WithIssuer(cfg.TOTPIssuer),
			app.WithExportFormat(cfg.ExportFormat),
		)
		logger.Info("starting", "version", version, "data_dir", cfg.DataDir)
		return tui.Run(cmd.Context(), d, app.NewSession())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)/strongbox")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "database directory (default: $(CWD)/databases)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(exportCmd)
}

// openLogFile opens the configured log file for the interactive session,
// which cannot log to the terminal it draws on.
func openLogFile() (*log.Logger, io.Closer, error) {
	path, err := paths.LogFile(configDir, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return logging.Open(path, cfg.LogLevel)
}

// stderrLogger is the logger for non-interactive subcommands.
func stderrLogger() *log.Logger {
	l, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return logging.Discard()
	}
	return l
}
