package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strongbox/internal/security"
)

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create an account",
	Long: `Register creates an account and its encrypted database file. The
password is read from the terminal, or from stdin when it is piped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := ""
		if len(args) == 1 {
			username = args[0]
		} else {
			u, err := promptLine("Username: ")
			if err != nil {
				return err
			}
			username = u
		}
		secret, err := promptNewSecret("Password: ")
		if err != nil {
			return err
		}
		defer security.Wipe(secret)

		account, key, err := openStore(stderrLogger()).Register(username, secret)
		if err != nil {
			return err
		}
		key.Wipe()
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", account.Username, account.AccountID)
		return nil
	},
}
