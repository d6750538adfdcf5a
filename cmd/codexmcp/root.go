package main

import (
	"fmt"

	"codexmcp/internal/buildinfo"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root codexmcp command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codexmcp",
		Short:         "Codex CLI invocation broker",
		Long:          "codexmcp brokers invocations of the codex CLI.\nIt serves the MCP protocol over stdio and manages persisted sessions.",
		Version:       fmt.Sprintf("codexmcp %s", buildinfo.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newServeCmd(),
		newExecCmd(),
		newSessionsCmd(),
		newSweepCmd(),
		newLogCmd(),
		newDashCmd(),
	)

	return cmd
}
