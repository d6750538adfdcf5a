// Package runner supervises codex exec subprocess invocations: argv
// construction, process-group spawning, deadline enforcement with guaranteed
// process-tree termination, and bounded retry on transient disconnections.
package runner

import "codexmcp/pkg/codex"

// BuildArgs constructs the codex argument vector for a request. The prompt
// is always passed via stdin (the "-" positional) to avoid argv size limits
// and keep UTF-8 intact.
func BuildArgs(req codex.Request) []string {
	if req.ThreadID != "" {
		// Resume mode.
		return []string{"exec", "resume", "--json", "--skip-git-repo-check", req.ThreadID, "-"}
	}

	args := []string{"exec", "-", "--json", "--skip-git-repo-check"}
	if req.Sandbox != "" {
		args = append(args, "--sandbox", string(req.Sandbox))
	}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}
	return args
}
