package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newSweepCmd creates the "codexmcp sweep" subcommand.
func newSweepCmd() *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove sessions idle longer than --max-age",
		Long:  "Removes persisted sessions whose last activity is older than the\ngiven age. With --max-age 0, removes every session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			removed := store.Sweep(maxAge)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 30*24*time.Hour, "maximum idle age to keep (0 removes all)")

	return cmd
}
