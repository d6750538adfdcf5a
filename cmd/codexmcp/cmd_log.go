package main

import (
	"fmt"
	"strings"

	"codexmcp/pkg/eventlog"

	"github.com/spf13/cobra"
)

// formatInvocationsTable formats audit records as a tabular string.
func formatInvocationsTable(recs []eventlog.Record) string {
	if len(recs) == 0 {
		return "No invocations recorded.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-8s %-9s %-7s %s\n", "THREAD", "MODE", "OUTCOME", "EVENTS", "FINISHED")
	for _, r := range recs {
		thread := r.ThreadID
		if thread == "" {
			thread = "-"
		}
		fmt.Fprintf(&b, "%-38s %-8s %-9s %-7d %s\n",
			thread, r.Mode, r.Outcome, r.EventCount,
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// newLogCmd creates the "codexmcp log" subcommand over the invocation audit
// database.
func newLogCmd() *cobra.Command {
	var limit int
	var thread string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent invocations",
		Long:  "Lists invocation audit records, newest first.\nWith --thread, shows that thread's invocations oldest first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}
			audit, err := eventlog.Open(paths.DBPath, nil)
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer func() { _ = audit.Close() }()

			ctx := cmd.Context()
			var recs []eventlog.Record
			if thread != "" {
				recs, err = audit.ByThread(ctx, thread)
			} else {
				recs, err = audit.Recent(ctx, limit)
			}
			if err != nil {
				return fmt.Errorf("query audit log: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatInvocationsTable(recs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records to show")
	cmd.Flags().StringVar(&thread, "thread", "", "show records for one thread id")

	return cmd
}
