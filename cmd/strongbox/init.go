package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strongbox/internal/paths"
	"github.com/mesh-intelligence/strongbox/internal/persist"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration and database directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The config directory and config.yaml already exist after
		// PersistentPreRunE; only the data directory is new here.
		if err := persist.EnsureDirectory(cfg.DataDir); err != nil {
			return fmt.Errorf("%w: create data dir: %v", types.ErrIO, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Strongbox initialized")
		fmt.Fprintln(out, "  config:", paths.ConfigFile(configDir))
		fmt.Fprintln(out, "  data:  ", cfg.DataDir)
		return nil
	},
}
