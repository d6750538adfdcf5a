package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"codexmcp/pkg/codex"
)

// codexConfigPath returns the Codex CLI's own config file. CODEX_HOME
// mirrors the CLI's override mechanism.
func codexConfigPath() string {
	if home := os.Getenv("CODEX_HOME"); home != "" {
		return filepath.Join(home, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".codex", "config.toml")
}

// applyCodexDefaults seeds model and sandbox defaults from the Codex CLI's
// config.toml. Best-effort: a missing or unparseable file changes nothing.
func applyCodexDefaults(cfg *Config, path string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path) //nolint:gosec // well-known CLI config path
	if err != nil {
		return
	}

	var cc struct {
		Model       string `toml:"model"`
		SandboxMode string `toml:"sandbox_mode"`
	}
	if err := toml.Unmarshal(data, &cc); err != nil {
		return
	}

	if cc.Model != "" {
		cfg.DefaultModel = cc.Model
	}
	if mode := codex.SandboxMode(cc.SandboxMode); codex.ValidSandbox(mode) {
		cfg.DefaultSandbox = mode
	}
}
