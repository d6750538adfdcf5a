package codex

import (
	"fmt"
	"time"
)

// ExecutionError represents a failed codex invocation: nonzero exit with no
// usable partial content, or an internal fault while supervising the child.
// It enables typed error discrimination via errors.As.
type ExecutionError struct {
	Message  string
	ExitCode int    // 0 when the failure happened before or outside exit
	Stderr   string // collected secondary-channel text, may be empty
}

func (e *ExecutionError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("codex execution failed (exit %d): %s", e.ExitCode, e.Message)
	}
	return fmt.Sprintf("codex execution failed: %s", e.Message)
}

// TimeoutError represents a deadline expiry. The process tree has already
// been terminated when this error is returned; PartialOutput carries
// whatever primary-channel text accumulated before expiry.
type TimeoutError struct {
	Timeout       time.Duration
	PartialOutput string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("codex execution timed out after %s", e.Timeout)
}

// SessionNotFoundError is returned when resuming a thread id with no
// persisted session record.
type SessionNotFoundError struct {
	ThreadID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ThreadID)
}

// InvalidSandboxModeError is returned before any process is spawned when a
// request carries a sandbox mode outside the accepted set.
type InvalidSandboxModeError struct {
	Mode SandboxMode
}

func (e *InvalidSandboxModeError) Error() string {
	return fmt.Sprintf("invalid sandbox mode: %s (valid: %s)", e.Mode, joinModes(ValidSandboxModes()))
}
