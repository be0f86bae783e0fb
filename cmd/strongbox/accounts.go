package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the accounts in the data directory",
	Long: `Accounts lists the usernames found in the data directory. Only the
plaintext envelope of each file is read; no password is needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := openStore(stderrLogger()).ListAccounts()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(refs)
		}
		if len(refs) == 0 {
			fmt.Fprintln(out, "no accounts in", cfg.DataDir)
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tACCOUNT ID")
		for _, r := range refs {
			fmt.Fprintf(w, "%s\t%s\n", r.Username, r.AccountID)
		}
		return w.Flush()
	},
}
