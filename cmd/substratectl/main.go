// Command substratectl inspects, diffs, and creates brain binary images.
// It is maintenance tooling over the on-disk format: it never applies a
// stimulus or drives a step, so it never touches the learning loop itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "substratectl",
		Short:         "Inspect, diff, and create brain binary images",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newInspectCmd(), newDiffCmd(), newNewCmd())
	return root
}
