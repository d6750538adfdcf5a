package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codexmcp/pkg/codex"
	"codexmcp/pkg/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("CODEX_HOME", t.TempDir()) // no config.toml there

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CodexPath != "codex" {
		t.Errorf("CodexPath = %q, want %q", cfg.CodexPath, "codex")
	}
	if cfg.DefaultSandbox != codex.DefaultSandbox {
		t.Errorf("DefaultSandbox = %q, want %q", cfg.DefaultSandbox, codex.DefaultSandbox)
	}
	if cfg.Timeout != codex.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, codex.DefaultTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	t.Setenv("CODEX_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("codex_path: /opt/codex/bin/codex\ndefault_sandbox: workspace-write\ndefault_model: gpt-5\ntimeout: 30s\nmax_retries: 5\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CodexPath != "/opt/codex/bin/codex" {
		t.Errorf("CodexPath = %q", cfg.CodexPath)
	}
	if cfg.DefaultSandbox != codex.SandboxWorkspaceWrite {
		t.Errorf("DefaultSandbox = %q", cfg.DefaultSandbox)
	}
	if cfg.DefaultModel != "gpt-5" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidSandbox(t *testing.T) {
	t.Setenv("CODEX_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_sandbox: yolo\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := config.Load(path)
	var invalid *codex.InvalidSandboxModeError
	if !errors.As(err, &invalid) {
		t.Fatalf("Load error = %v, want InvalidSandboxModeError", err)
	}
	if invalid.Mode != "yolo" {
		t.Errorf("Mode = %q, want %q", invalid.Mode, "yolo")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("CODEX_HOME", t.TempDir())
	t.Setenv("CODEXMCP_CODEX_PATH", "/usr/local/bin/codex")
	t.Setenv("CODEXMCP_LOG_LEVEL", "warn")
	t.Setenv("CODEXMCP_TIMEOUT", "90s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("codex_path: /opt/codex\nlog_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CodexPath != "/usr/local/bin/codex" {
		t.Errorf("CodexPath = %q", cfg.CodexPath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestCodexConfigSeedsDefaults(t *testing.T) {
	codexHome := t.TempDir()
	t.Setenv("CODEX_HOME", codexHome)
	data := []byte("model = \"o4-mini\"\nsandbox_mode = \"workspace-write\"\n")
	if err := os.WriteFile(filepath.Join(codexHome, "config.toml"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultModel != "o4-mini" {
		t.Errorf("DefaultModel = %q, want %q", cfg.DefaultModel, "o4-mini")
	}
	if cfg.DefaultSandbox != codex.SandboxWorkspaceWrite {
		t.Errorf("DefaultSandbox = %q, want %q", cfg.DefaultSandbox, codex.SandboxWorkspaceWrite)
	}
}

func TestOwnConfigOverridesCodexConfig(t *testing.T) {
	codexHome := t.TempDir()
	t.Setenv("CODEX_HOME", codexHome)
	if err := os.WriteFile(filepath.Join(codexHome, "config.toml"), []byte("model = \"o4-mini\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_model: gpt-5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultModel != "gpt-5" {
		t.Errorf("DefaultModel = %q, want %q", cfg.DefaultModel, "gpt-5")
	}
}

func TestMalformedCodexConfigIgnored(t *testing.T) {
	codexHome := t.TempDir()
	t.Setenv("CODEX_HOME", codexHome)
	if err := os.WriteFile(filepath.Join(codexHome, "config.toml"), []byte("model = [broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultModel != "" {
		t.Errorf("DefaultModel = %q, want empty", cfg.DefaultModel)
	}
}
