package main

import (
	"fmt"
	"strings"

	"codexmcp/pkg/eventlog"
	"codexmcp/pkg/session"

	"github.com/spf13/cobra"
)

// formatSessionsTable formats persisted sessions as a tabular string.
func formatSessionsTable(sessions []*session.Session) string {
	if len(sessions) == 0 {
		return "No sessions found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-7s %-20s %-18s %s\n", "THREAD", "TURNS", "SANDBOX", "LAST ACTIVE", "CWD")
	for _, s := range sessions {
		fmt.Fprintf(&b, "%-38s %-7d %-20s %-18s %s\n",
			s.ThreadID, s.TurnCount, s.Sandbox,
			s.LastActive.Local().Format("2006-01-02 15:04"), s.WorkDir)
	}
	return b.String()
}

// formatSessionDetail renders one session with its turn history.
func formatSessionDetail(s *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thread:      %s\n", s.ThreadID)
	fmt.Fprintf(&b, "Created:     %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Last active: %s\n", s.LastActive.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Cwd:         %s\n", s.WorkDir)
	fmt.Fprintf(&b, "Sandbox:     %s\n", s.Sandbox)
	if s.Model != "" {
		fmt.Fprintf(&b, "Model:       %s\n", s.Model)
	}
	fmt.Fprintf(&b, "Turns:       %d\n", s.TurnCount)
	for i, turn := range s.History {
		fmt.Fprintf(&b, "\n[%d] %s (%s)\n%s\n",
			i+1, turn.Role, turn.Timestamp.Local().Format("15:04:05"), turn.Content)
	}
	return b.String()
}

// openStore resolves paths and opens the session store for a subcommand.
func openStore() (*session.Store, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	store, err := session.NewStore(paths.SessionsDir, nil)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

// newSessionsCmd creates the "codexmcp sessions" parent command.
func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Browse and manage persisted sessions",
		Long:  "Commands for browsing and managing the persisted codex sessions.",
	}

	cmd.AddCommand(
		newSessionsListCmd(),
		newSessionsShowCmd(),
		newSessionsDeleteCmd(),
	)
	return cmd
}

// newSessionsListCmd creates the "codexmcp sessions list" subcommand.
func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long:  "List persisted sessions ordered by last activity.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSessionsTable(store.List()))
			return nil
		},
	}
}

// newSessionsShowCmd creates the "codexmcp sessions show" subcommand.
func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Show one session with its turn history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}
			store, err := session.NewStore(paths.SessionsDir, nil)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			sess, err := store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSessionDetail(sess))

			// The audit trail is best-effort context; opening it must not
			// hide the session itself.
			if audit, aerr := eventlog.Open(paths.DBPath, nil); aerr == nil {
				defer func() { _ = audit.Close() }()
				if recs, qerr := audit.ByThread(cmd.Context(), args[0]); qerr == nil && len(recs) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "\nInvocations:\n%s", formatInvocationsTable(recs))
				}
			}
			return nil
		},
	}
}

// newSessionsDeleteCmd creates the "codexmcp sessions delete" subcommand.
func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <thread-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			store.Delete(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		},
	}
}
