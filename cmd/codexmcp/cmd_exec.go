package main

import (
	"fmt"
	"os"
	"time"

	"codexmcp/internal/mcpserv"
	"codexmcp/pkg/bridge"
	"codexmcp/pkg/codex"
	"codexmcp/pkg/config"
	"codexmcp/pkg/eventlog"
	"codexmcp/pkg/runner"
	"codexmcp/pkg/session"

	"github.com/spf13/cobra"
)

// newExecCmd creates the "codexmcp exec" subcommand: a one-shot invocation
// without the MCP front-end, useful for smoke-testing the broker.
func newExecCmd() *cobra.Command {
	var (
		cwd     string
		sandbox string
		model   string
		timeout time.Duration
		thread  string
	)

	cmd := &cobra.Command{
		Use:   "exec <prompt>",
		Short: "Run one codex invocation directly",
		Long:  "Runs a single codex turn and prints the formatted response.\nWith --thread, continues an existing session instead of starting one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}
			if err := os.MkdirAll(paths.Home, 0o700); err != nil {
				return fmt.Errorf("create state dir: %w", err)
			}

			cfg, err := config.Load(paths.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log, err := newLogger(cfg.LogLevel, "")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			store, err := session.NewStore(paths.SessionsDir, log)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			audit, err := eventlog.Open(paths.DBPath, log)
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer func() { _ = audit.Close() }()

			run := runner.New(cfg.CodexPath, log)
			run.MaxRetries = cfg.MaxRetries
			run.RetryDelay = cfg.RetryDelay

			br := bridge.New(run, store, audit, log)
			br.DefaultSandbox = cfg.DefaultSandbox
			br.DefaultModel = cfg.DefaultModel
			br.Timeout = cfg.Timeout

			ctx := cmd.Context()
			var res *codex.InvocationResult
			if thread != "" {
				res, err = br.RunReply(ctx, thread, args[0], timeout)
			} else {
				res, err = br.RunNew(ctx, codex.Request{
					Prompt:  args[0],
					WorkDir: cwd,
					Sandbox: codex.SandboxMode(sandbox),
					Model:   model,
					Timeout: timeout,
				})
			}
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), mcpserv.FormatError(err))
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), mcpserv.FormatResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory for the session")
	cmd.Flags().StringVar(&sandbox, "sandbox", "", "sandbox mode (read-only|workspace-write|danger-full-access)")
	cmd.Flags().StringVar(&model, "model", "", "model name override")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "invocation timeout (default from config)")
	cmd.Flags().StringVar(&thread, "thread", "", "thread id to continue instead of starting a new session")

	return cmd
}
