// Package mcpserv exposes the codex broker over the Model Context Protocol:
// a stdio server with two tools, "codex" to start a session and
// "codex-reply" to continue one.
package mcpserv

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"codexmcp/pkg/codex"
)

// Invoker is the orchestration surface the tools call into.
// *bridge.Bridge satisfies this.
type Invoker interface {
	RunNew(ctx context.Context, req codex.Request) (*codex.InvocationResult, error)
	RunReply(ctx context.Context, threadID, prompt string, timeout time.Duration) (*codex.InvocationResult, error)
}

// Server wraps the MCP protocol machinery around an Invoker.
type Server struct {
	mcp *server.MCPServer
	inv Invoker
	log *zap.SugaredLogger
}

// New builds the MCP server and registers both tools. A nil logger is
// replaced with a no-op logger.
func New(inv Invoker, version string, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("mcp")
	s := &Server{
		mcp: server.NewMCPServer("codexmcp", version, server.WithToolCapabilities(false)),
		inv: inv,
		log: log,
	}

	sandboxModes := make([]string, 0, 3)
	for _, m := range codex.ValidSandboxModes() {
		sandboxModes = append(sandboxModes, string(m))
	}

	s.mcp.AddTool(mcp.NewTool("codex",
		mcp.WithDescription(
			"Create a new Codex session and execute a coding task. "+
				"Codex is an AI coding assistant that can analyze code, answer questions, "+
				"and provide code suggestions. Use this tool for starting new conversations."),
		mcp.WithString("prompt", mcp.Required(),
			mcp.Description("The task or question for Codex to process")),
		mcp.WithString("cwd",
			mcp.Description("Working directory for the session. Defaults to current directory.")),
		mcp.WithString("sandbox",
			mcp.Enum(sandboxModes...),
			mcp.Description("Sandbox mode: 'read-only' (default, safest), 'workspace-write', or 'danger-full-access'")),
		mcp.WithString("model",
			mcp.Description("Optional model name override (e.g., 'gpt-4o', 'o3-mini')")),
		mcp.WithNumber("timeout",
			mcp.Description("Timeout in seconds")),
	), s.handleCodex)

	s.mcp.AddTool(mcp.NewTool("codex-reply",
		mcp.WithDescription(
			"Continue an existing Codex conversation. "+
				"Use this to send follow-up messages in an ongoing session. "+
				"Requires the threadId from a previous codex call."),
		mcp.WithString("threadId", mcp.Required(),
			mcp.Description("The session/thread ID from a previous codex call")),
		mcp.WithString("prompt", mcp.Required(),
			mcp.Description("The follow-up message or question")),
		mcp.WithNumber("timeout",
			mcp.Description("Timeout in seconds")),
	), s.handleReply)

	return s
}

// ServeStdio blocks serving the protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleCodex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := codex.Request{
		Prompt:  prompt,
		WorkDir: request.GetString("cwd", ""),
		Sandbox: codex.SandboxMode(request.GetString("sandbox", "")),
		Model:   request.GetString("model", ""),
		Timeout: timeoutArg(request),
	}
	s.log.Infow("tool call", "tool", "codex", "cwd", req.WorkDir, "sandbox", req.Sandbox)

	res, err := s.inv.RunNew(ctx, req)
	if err != nil {
		s.log.Errorw("codex tool failed", "err", err)
		return mcp.NewToolResultText(FormatError(err)), nil
	}
	return mcp.NewToolResultText(FormatResult(res)), nil
}

func (s *Server) handleReply(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threadID, err := request.RequireString("threadId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.log.Infow("tool call", "tool", "codex-reply", "thread_id", threadID)

	res, err := s.inv.RunReply(ctx, threadID, prompt, timeoutArg(request))
	if err != nil {
		s.log.Errorw("codex-reply tool failed", "thread_id", threadID, "err", err)
		return mcp.NewToolResultText(FormatError(err)), nil
	}
	return mcp.NewToolResultText(FormatResult(res)), nil
}

// timeoutArg reads the optional per-call timeout, given in whole seconds.
func timeoutArg(request mcp.CallToolRequest) time.Duration {
	secs := request.GetInt("timeout", 0)
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
