package mcpserv

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"codexmcp/pkg/codex"
)

type fakeInvoker struct {
	newReq   codex.Request
	threadID string
	prompt   string
	timeout  time.Duration
	res      *codex.InvocationResult
	err      error
}

func (f *fakeInvoker) RunNew(_ context.Context, req codex.Request) (*codex.InvocationResult, error) {
	f.newReq = req
	return f.res, f.err
}

func (f *fakeInvoker) RunReply(_ context.Context, threadID, prompt string, timeout time.Duration) (*codex.InvocationResult, error) {
	f.threadID, f.prompt, f.timeout = threadID, prompt, timeout
	return f.res, f.err
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("content blocks = %d, want 1", len(result.Content))
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func TestHandleCodexPassesArguments(t *testing.T) {
	inv := &fakeInvoker{res: &codex.InvocationResult{
		Success: true, ThreadID: "t-1", AgentMessages: "done", Completed: true,
	}}
	s := New(inv, "test", nil)

	result, err := s.handleCodex(context.Background(), callRequest("codex", map[string]any{
		"prompt":  "fix the bug",
		"cwd":     "/repo",
		"sandbox": "workspace-write",
		"model":   "o4-mini",
		"timeout": float64(120),
	}))
	if err != nil {
		t.Fatalf("handleCodex: %v", err)
	}

	if inv.newReq.Prompt != "fix the bug" {
		t.Errorf("Prompt = %q", inv.newReq.Prompt)
	}
	if inv.newReq.WorkDir != "/repo" {
		t.Errorf("WorkDir = %q", inv.newReq.WorkDir)
	}
	if inv.newReq.Sandbox != codex.SandboxWorkspaceWrite {
		t.Errorf("Sandbox = %q", inv.newReq.Sandbox)
	}
	if inv.newReq.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v", inv.newReq.Timeout)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "done") || !strings.Contains(text, "*Thread ID: t-1*") {
		t.Errorf("response text = %q", text)
	}
}

func TestHandleCodexMissingPromptIsToolError(t *testing.T) {
	s := New(&fakeInvoker{}, "test", nil)

	result, err := s.handleCodex(context.Background(), callRequest("codex", map[string]any{}))
	if err != nil {
		t.Fatalf("handleCodex: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result for missing prompt")
	}
}

func TestHandleCodexRendersBrokerFailureAsText(t *testing.T) {
	inv := &fakeInvoker{err: &codex.TimeoutError{Timeout: 30 * time.Second}}
	s := New(inv, "test", nil)

	result, err := s.handleCodex(context.Background(), callRequest("codex", map[string]any{
		"prompt": "p",
	}))
	if err != nil {
		t.Fatalf("handleCodex: %v", err)
	}
	text := textOf(t, result)
	if !strings.Contains(text, "**Timeout Error:**") {
		t.Errorf("response text = %q", text)
	}
}

func TestHandleReplyPassesThreadAndTimeout(t *testing.T) {
	inv := &fakeInvoker{res: &codex.InvocationResult{
		Success: true, ThreadID: "t-9", AgentMessages: "more", Completed: true,
	}}
	s := New(inv, "test", nil)

	result, err := s.handleReply(context.Background(), callRequest("codex-reply", map[string]any{
		"threadId": "t-9",
		"prompt":   "continue",
		"timeout":  float64(45),
	}))
	if err != nil {
		t.Fatalf("handleReply: %v", err)
	}
	if inv.threadID != "t-9" || inv.prompt != "continue" {
		t.Errorf("invoker saw threadID=%q prompt=%q", inv.threadID, inv.prompt)
	}
	if inv.timeout != 45*time.Second {
		t.Errorf("timeout = %v", inv.timeout)
	}
	if !strings.Contains(textOf(t, result), "more") {
		t.Errorf("response text = %q", textOf(t, result))
	}
}

func TestHandleReplyMissingThreadIsToolError(t *testing.T) {
	s := New(&fakeInvoker{}, "test", nil)

	result, err := s.handleReply(context.Background(), callRequest("codex-reply", map[string]any{
		"prompt": "continue",
	}))
	if err != nil {
		t.Fatalf("handleReply: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result for missing threadId")
	}
}
