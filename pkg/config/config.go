// Package config loads broker configuration: the codexmcp config file,
// environment overrides, and defaults probed from the Codex CLI's own
// config.toml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codexmcp/pkg/codex"
)

// Config is the fully resolved broker configuration.
type Config struct {
	// CodexPath is the codex binary invoked for every turn. Defaults to
	// "codex" resolved via PATH.
	CodexPath string `yaml:"codex_path"`

	// DefaultSandbox applies when a request does not name a sandbox mode.
	DefaultSandbox codex.SandboxMode `yaml:"default_sandbox"`

	// DefaultModel applies when a request does not name a model. Empty
	// leaves model selection to codex.
	DefaultModel string `yaml:"default_model"`

	// Timeout bounds a single invocation.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries and RetryDelay drive the transient-disconnection retry
	// policy.
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`

	// LogLevel is a zap level string: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// UnmarshalYAML accepts durations in Go duration syntax ("30s", "2m").
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type alias struct {
		CodexPath      string `yaml:"codex_path"`
		DefaultSandbox string `yaml:"default_sandbox"`
		DefaultModel   string `yaml:"default_model"`
		Timeout        string `yaml:"timeout"`
		MaxRetries     *int   `yaml:"max_retries"`
		RetryDelay     string `yaml:"retry_delay"`
		LogLevel       string `yaml:"log_level"`
	}
	var raw alias
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.CodexPath != "" {
		c.CodexPath = raw.CodexPath
	}
	if raw.DefaultSandbox != "" {
		c.DefaultSandbox = codex.SandboxMode(raw.DefaultSandbox)
	}
	if raw.DefaultModel != "" {
		c.DefaultModel = raw.DefaultModel
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if raw.MaxRetries != nil {
		c.MaxRetries = *raw.MaxRetries
	}
	if raw.RetryDelay != "" {
		d, err := time.ParseDuration(raw.RetryDelay)
		if err != nil {
			return fmt.Errorf("retry_delay: %w", err)
		}
		c.RetryDelay = d
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CodexPath:      "codex",
		DefaultSandbox: codex.DefaultSandbox,
		Timeout:        codex.DefaultTimeout,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		LogLevel:       "info",
	}
}

// Load resolves configuration in precedence order: defaults, the Codex
// CLI's own config.toml, the codexmcp config file at path, then environment
// variables. A missing config file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	// The codex CLI keeps its preferred model and sandbox in
	// ~/.codex/config.toml; honor them unless our own config overrides.
	applyCodexDefaults(&cfg, codexConfigPath())

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if !codex.ValidSandbox(cfg.DefaultSandbox) {
		return Config{}, &codex.InvalidSandboxModeError{Mode: cfg.DefaultSandbox}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = codex.DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return cfg, nil
}

// applyEnv overlays CODEXMCP_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CODEXMCP_CODEX_PATH"); v != "" {
		cfg.CodexPath = v
	}
	if v := os.Getenv("CODEXMCP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CODEXMCP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
}
