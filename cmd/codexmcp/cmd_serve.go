package main

import (
	"fmt"
	"os"

	"codexmcp/internal/buildinfo"
	"codexmcp/internal/mcpserv"
	"codexmcp/pkg/bridge"
	"codexmcp/pkg/config"
	"codexmcp/pkg/eventlog"
	"codexmcp/pkg/runner"
	"codexmcp/pkg/session"

	"github.com/spf13/cobra"
)

// newServeCmd creates the "codexmcp serve" subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdio",
		Long:  "Starts the MCP server on stdin/stdout, exposing the 'codex' and\n'codex-reply' tools. Logs go to stderr and the server log file.",
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

			log, err := newLogger(cfg.LogLevel, paths.LogPath)
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

			log.Infow("starting MCP server",
				"version", buildinfo.String(),
				"codex_path", cfg.CodexPath,
				"sessions_dir", paths.SessionsDir)

			srv := mcpserv.New(br, buildinfo.String(), log)
			return srv.ServeStdio()
		},
	}
}
