package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds all resolved codexmcp state file paths.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	Home        string // ~/.codexmcp or CODEXMCP_HOME
	SessionsDir string // sessions/ (respects CODEXMCP_HOME)
	ConfigPath  string // config.yaml or CODEXMCP_CONFIG
	DBPath      string // invocations.db or CODEXMCP_DB_PATH
	LogPath     string // codexmcp.log or CODEXMCP_LOG_FILE
}

// ResolvePaths returns all codexmcp paths, respecting env var overrides.
// Environment variables:
//   - CODEXMCP_HOME: base directory for all state (default: ~/.codexmcp)
//   - CODEXMCP_CONFIG: config file (default: $CODEXMCP_HOME/config.yaml)
//   - CODEXMCP_DB_PATH: invocation audit database (default: $CODEXMCP_HOME/invocations.db)
//   - CODEXMCP_LOG_FILE: server log file (default: $CODEXMCP_HOME/codexmcp.log)
func ResolvePaths() (*Paths, error) {
	home, err := resolveHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		Home:        home,
		SessionsDir: filepath.Join(home, "sessions"),
		ConfigPath:  resolvePathWithEnv("CODEXMCP_CONFIG", home, "config.yaml"),
		DBPath:      resolvePathWithEnv("CODEXMCP_DB_PATH", home, "invocations.db"),
		LogPath:     resolvePathWithEnv("CODEXMCP_LOG_FILE", home, "codexmcp.log"),
	}, nil
}

// resolveHome returns the state directory from CODEXMCP_HOME or ~/.codexmcp.
func resolveHome() (string, error) {
	if v := os.Getenv("CODEXMCP_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".codexmcp"), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
