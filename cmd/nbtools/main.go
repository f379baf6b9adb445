// Command nbtools re-runs a notebook's code in a background process.
package main

import (
	"fmt"
	"os"

	"github.com/deixis/nbtools"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nbtools: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	config string
	debug  bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "nbtools",
		Short: "Run a notebook's code in the background",
		Long: `nbtools re-runs the code of a saved notebook, up to the cell that starts
with %%background, as a detached interpreter process next to the notebook.`,
		Example: `  # Start the active notebook's code in the background
  nbtools background

  # Show what would run for a given notebook
  nbtools source --notebook analysis/train.ipynb

  # Serve the tools over MCP (stdio)
  nbtools mcp`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.config, "config", "c", "", "path to a .nbtools file (default: search upward from the working directory)")
	root.PersistentFlags().BoolVarP(&g.debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(
		newBackgroundCmd(&g),
		newSourceCmd(&g),
		newHistoryCmd(&g),
		newShowCmd(&g),
		newMCPCmd(&g),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), nbtools.Version)
			},
		},
	)
	return root
}
