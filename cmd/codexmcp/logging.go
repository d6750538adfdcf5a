package main

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds the broker logger. Output goes to stderr (stdout carries
// the MCP protocol) plus the given log file when non-empty.
func newLogger(level, logFile string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = lvl

	cfg.OutputPaths = []string{"stderr"}
	if logFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar().Named("codexmcp"), nil
}
