package runner_test

import (
	"strings"
	"testing"

	"codexmcp/pkg/codex"
	"codexmcp/pkg/runner"
)

func TestBuildArgs_NewSession(t *testing.T) {
	args := runner.BuildArgs(codex.Request{
		Prompt:  "hi",
		Sandbox: codex.SandboxWorkspaceWrite,
		Model:   "gpt-5-codex",
	})

	want := []string{"exec", "-", "--json", "--skip-git-repo-check", "--sandbox", "workspace-write", "--model", "gpt-5-codex"}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Fatalf("expected %v, got %v", want, args)
	}
}

func TestBuildArgs_NewSessionOmitsEmptyFlags(t *testing.T) {
	args := runner.BuildArgs(codex.Request{Prompt: "hi"})

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--sandbox") || strings.Contains(joined, "--model") {
		t.Fatalf("expected no sandbox/model flags, got %v", args)
	}
}

func TestBuildArgs_ResumeMode(t *testing.T) {
	args := runner.BuildArgs(codex.Request{Prompt: "hi", ThreadID: "th_9", Sandbox: codex.SandboxReadOnly})

	want := []string{"exec", "resume", "--json", "--skip-git-repo-check", "th_9", "-"}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Fatalf("expected %v, got %v", want, args)
	}
}
