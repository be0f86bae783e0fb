package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/internal/store"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

var (
	flagExportUser   string
	flagExportFormat string
	flagExportSealed bool
	flagExportCode   string
)

var exportCmd = &cobra.Command{
	Use:   "export <target>",
	Short: "Export an account's epics and stories",
	Long: `Export writes a snapshot of one account to target. The database file is
only read. With --sealed the snapshot is a JSON envelope encrypted under a
separate export secret; otherwise it is cleartext in the chosen format.
Exports never contain the password hash or the TOTP secret.

Formats: ` + strings.Join(types.ExportFormats, ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		format := flagExportFormat
		switch {
		case format != "":
		case flagExportSealed:
			format = types.ExportJSON
		default:
			format = cfg.ExportFormat
		}
		username := flagExportUser
		if username == "" {
			u, err := promptLine("Username: ")
			if err != nil {
				return err
			}
			username = u
		}
		secret, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		defer security.Wipe(secret)

		st := openStore(stderrLogger())
		doc, key, err := st.Authenticate(username, secret, flagExportCode)
		if err != nil {
			return err
		}
		defer key.Wipe()

		opts := store.ExportOptions{Format: format}
		if flagExportSealed {
			exportSecret, err := promptNewSecret("Export secret: ")
			if err != nil {
				return err
			}
			defer security.Wipe(exportSecret)
			opts.Secret = exportSecret
		}
		if err := st.Export(cmd.Context(), doc.Account.AccountID, key, target, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d epics and %d stories to %s\n", len(doc.Epics), len(doc.Stories), target)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportUser, "user", "u", "", "account username (prompted when empty)")
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "export format (default: export_format from config)")
	exportCmd.Flags().BoolVar(&flagExportSealed, "sealed", false, "encrypt the export under a separate secret")
	exportCmd.Flags().StringVar(&flagExportCode, "code", "", "one-time code, when TOTP is enabled")
}
