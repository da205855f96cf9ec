// Command crossmacroctl is an unprivileged CLI exercising the IPC client
// (C3) and playback engine (C8) for manual testing against a running
// crossmacrod — it is not the GUI shell, just a thin demonstration layer.
//
// Grounded on smazurov-videonode's cmd package: one CreateXCmd() factory
// per subcommand returning a *cobra.Command, assembled under a root in
// main().
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "crossmacroctl",
		Short: "Exercise the crossmacro daemon from the command line",
	}
	root.PersistentFlags().String("socket", "", "daemon socket path (defaults to the primary, then fallback, socket)")

	root.AddCommand(newListenCmd(), newPlayCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
