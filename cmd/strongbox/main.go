// Command strongbox is an encrypted, offline epic and story tracker. Run
// without arguments it opens the terminal interface; the subcommands cover
// setup and scripting.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// version is stamped by the build.
var version = "dev"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "strongbox:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode separates problems the user can fix from failures of the
// machine or the program.
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrIO), errors.Is(err, types.ErrCorrupt), errors.Is(err, types.ErrInvariant):
		return exitSysError
	}
	return exitUserError
}
