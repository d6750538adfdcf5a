// Package codex holds the shared types and error taxonomy for the Codex
// invocation broker: sandbox modes, invocation requests and results, and
// the typed failures surfaced to the front-end.
package codex

import (
	"sort"
	"strings"
	"time"
)

// SandboxMode controls how much filesystem access the codex subprocess gets.
type SandboxMode string

// Sandbox modes accepted by codex exec --sandbox.
const (
	SandboxReadOnly       SandboxMode = "read-only"
	SandboxWorkspaceWrite SandboxMode = "workspace-write"
	SandboxDangerFull     SandboxMode = "danger-full-access"
)

// DefaultSandbox is used when a request does not specify a sandbox mode.
const DefaultSandbox = SandboxReadOnly

// DefaultTimeout bounds a single invocation unless the request overrides it.
const DefaultTimeout = 10 * time.Minute

// ValidSandboxModes returns the accepted sandbox modes in sorted order.
func ValidSandboxModes() []SandboxMode {
	modes := []SandboxMode{SandboxReadOnly, SandboxWorkspaceWrite, SandboxDangerFull}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// ValidSandbox reports whether mode is one of the accepted sandbox modes.
func ValidSandbox(mode SandboxMode) bool {
	switch mode {
	case SandboxReadOnly, SandboxWorkspaceWrite, SandboxDangerFull:
		return true
	default:
		return false
	}
}

// Request describes one invocation of the codex CLI.
// ThreadID empty means a new session; non-empty means resume mode.
type Request struct {
	Prompt   string
	WorkDir  string
	Sandbox  SandboxMode
	Model    string
	Timeout  time.Duration
	ThreadID string
}

// InvocationResult is the shape returned to the protocol front-end.
type InvocationResult struct {
	Success       bool     `json:"success"`
	ThreadID      string   `json:"threadId,omitempty"`
	AgentMessages string   `json:"agent_messages"`
	Reasoning     []string `json:"reasoning"`
	Completed     bool     `json:"completed"`
	Errors        []string `json:"errors,omitempty"`
}

// joinModes renders sandbox modes for error messages.
func joinModes(modes []SandboxMode) string {
	parts := make([]string, 0, len(modes))
	for _, m := range modes {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, ", ")
}
