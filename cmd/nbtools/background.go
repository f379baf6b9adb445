package main

import (
	"fmt"
	"io"
	"os"

	"github.com/deixis/nbtools/internal/background"
	"github.com/spf13/cobra"
)

type runFlags struct {
	notebook string
	kernelID string
	dryRun   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.notebook, "notebook", "n", "", "notebook path (default: the active notebook)")
	cmd.Flags().StringVar(&f.kernelID, "kernel-id", "", "kernel ID used to look the notebook up on the Jupyter server")
}

func newBackgroundCmd(g *globalFlags) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:     "background",
		Aliases: []string{"bg"},
		Short:   "Run the notebook's code up to the %%background cell in a detached process",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.dryRun {
				return runSource(cmd, g, &f)
			}
			a, err := newApp(g, appOptions{kernelID: f.kernelID, stdout: os.Stdout, stderr: os.Stderr})
			if err != nil {
				return err
			}
			res, err := a.runner.Run(cmd.Context(), f.notebook)
			if err != nil {
				return err
			}
			printStarted(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the code instead of running it")
	return cmd
}

func newSourceCmd(g *globalFlags) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Print the code a background run would execute",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSource(cmd, g, &f)
		},
	}
	f.register(cmd)
	return cmd
}

func runSource(cmd *cobra.Command, g *globalFlags, f *runFlags) error {
	a, err := newApp(g, appOptions{kernelID: f.kernelID})
	if err != nil {
		return err
	}
	p, err := a.runner.Preview(cmd.Context(), f.notebook)
	if err != nil {
		return err
	}
	if !p.Terminated {
		a.log.Warn().Str("notebook", p.Notebook).Msg("no terminal directive cell found; every code cell is included")
	}
	_, err = io.WriteString(cmd.OutOrStdout(), p.Source)
	return err
}

func printStarted(w io.Writer, res *background.Result) {
	fmt.Fprintf(w, "started %s (pid %d)\n", res.RunID, res.PID)
	fmt.Fprintf(w, "  notebook: %s\n", res.Notebook)
	fmt.Fprintf(w, "  cells:    %d\n", res.Cells)
}
