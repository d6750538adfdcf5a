package mcpserv

import (
	"errors"
	"fmt"
	"strings"

	"codexmcp/pkg/codex"
)

// partialOutputLimit caps the stdout excerpt included in timeout messages.
const partialOutputLimit = 1000

// FormatResult renders an invocation result as the tool's text response:
// agent messages, then any stream errors, then the thread id trailer.
func FormatResult(res *codex.InvocationResult) string {
	var b strings.Builder

	if res.AgentMessages != "" {
		b.WriteString(res.AgentMessages)
	}
	if len(res.Errors) > 0 {
		fmt.Fprintf(&b, "\n\n**Errors:**\n%s", strings.Join(res.Errors, "\n"))
	}
	if res.ThreadID != "" {
		fmt.Fprintf(&b, "\n\n---\n*Thread ID: %s*", res.ThreadID)
	}

	if b.Len() == 0 {
		return "No response from Codex."
	}
	return b.String()
}

// FormatError renders a broker failure as tool text, shaped per error class
// so the caller can act on it.
func FormatError(err error) string {
	var te *codex.TimeoutError
	if errors.As(err, &te) {
		msg := fmt.Sprintf("**Timeout Error:** Codex execution timed out after %d seconds.", int(te.Timeout.Seconds()))
		if te.PartialOutput != "" {
			partial := te.PartialOutput
			if len(partial) > partialOutputLimit {
				partial = partial[:partialOutputLimit]
			}
			msg += fmt.Sprintf("\n\n**Partial Output:**\n%s...", partial)
		}
		return msg
	}

	var nf *codex.SessionNotFoundError
	if errors.As(err, &nf) {
		return fmt.Sprintf("**Session Not Found:** Thread ID '%s' not found. Please start a new session with 'codex' tool.", nf.ThreadID)
	}

	var ee *codex.ExecutionError
	if errors.As(err, &ee) {
		msg := fmt.Sprintf("**Execution Error:** %s", ee.Error())
		if ee.Stderr != "" {
			msg += fmt.Sprintf("\n\n**Stderr:**\n%s", ee.Stderr)
		}
		return msg
	}

	var sb *codex.InvalidSandboxModeError
	if errors.As(err, &sb) {
		return fmt.Sprintf("**Error:** %s", sb.Error())
	}

	return fmt.Sprintf("**Unexpected Error:** %s", err.Error())
}
