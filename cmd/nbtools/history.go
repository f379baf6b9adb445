package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		jsonFlag bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent background runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(g, appOptions{})
			if err != nil {
				return err
			}
			launches, err := a.store.List(limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonFlag {
				return writeJSON(w, launches)
			}
			if len(launches) == 0 {
				fmt.Fprintln(w, "no background runs recorded")
				return nil
			}
			for _, l := range launches {
				fmt.Fprintln(w, l.Summary())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "output as JSON")
	return cmd
}

func newShowCmd(g *globalFlags) *cobra.Command {
	var jsonFlag bool
	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show the record of a background run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, appOptions{})
			if err != nil {
				return err
			}
			launch, err := a.store.Load(args[0])
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd.OutOrStdout(), launch)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), launch.Describe())
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "output as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
