package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"codexmcp/pkg/codex"
	"codexmcp/pkg/stream"
)

// Defaults for the retry policy and termination grace window.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultKillGrace  = 500 * time.Millisecond
)

// codexDefaultRustLog quiets codex's own tracing unless the operator set a
// filter explicitly.
const codexDefaultRustLog = "error"

// Runner executes codex exec --json invocations. One Runner may serve many
// sequential invocations; each invocation spawns one child process, drains
// its streams, and guarantees the process tree is terminated on every exit
// path.
type Runner struct {
	CodexPath  string
	MaxRetries int
	RetryDelay time.Duration
	KillGrace  time.Duration
	Env        []string // extra KEY=VALUE overlay for the child

	log *zap.SugaredLogger
}

// New creates a Runner for the codex binary at codexPath with default retry
// bounds. A nil logger is replaced with a no-op logger.
func New(codexPath string, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("runner")
	return &Runner{
		CodexPath:  codexPath,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		KillGrace:  DefaultKillGrace,
		log:        log,
	}
}

// Execute runs the full invocation with automatic retry on transient
// disconnections. Timeouts propagate immediately; execution errors retry up
// to the bound. After exhaustion a remembered partial result with any agent
// text or thread id is returned instead of an error.
func (r *Runner) Execute(ctx context.Context, req codex.Request) (*stream.Result, error) {
	if req.Sandbox == "" {
		req.Sandbox = codex.DefaultSandbox
	}
	if !codex.ValidSandbox(req.Sandbox) {
		return nil, &codex.InvalidSandboxModeError{Mode: req.Sandbox}
	}
	if req.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &codex.ExecutionError{Message: fmt.Sprintf("resolve working directory: %v", err)}
		}
		req.WorkDir = wd
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = codex.DefaultTimeout
	}

	var lastErr error
	var lastRes *stream.Result

	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			r.log.Infow("retrying codex invocation",
				"attempt", attempt, "max_retries", r.MaxRetries, "delay", r.RetryDelay)
			select {
			case <-time.After(r.RetryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("retry wait: %w", ctx.Err())
			}
		}

		res, err := r.runOnce(ctx, req, timeout)
		if err != nil {
			var te *codex.TimeoutError
			if errors.As(err, &te) {
				// A deadline is an operator constraint, not a flaky link.
				return nil, err
			}
			r.log.Warnw("codex execution error", "attempt", attempt+1, "err", err)
			lastErr = err
			continue
		}

		if len(res.Errors) > 0 && isRetryable(res.Errors) && !res.Completed {
			r.log.Warnw("transient disconnection detected", "errors", res.Errors)
			lastRes = res
			lastErr = &codex.ExecutionError{Message: fmt.Sprintf("retryable error: %v", res.Errors)}
			continue
		}

		res.Attempts = attempt + 1
		return res, nil
	}

	if lastRes != nil && lastRes.HasContent() {
		r.log.Warn("returning partial result after retries exhausted")
		lastRes.Attempts = r.MaxRetries + 1
		return lastRes, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &codex.ExecutionError{Message: "all retry attempts failed"}
}

// runOnce performs a single attempt: spawn, feed the prompt, drain under the
// deadline, terminate the tree, inspect the exit.
func (r *Runner) runOnce(ctx context.Context, req codex.Request, timeout time.Duration) (*stream.Result, error) {
	args := BuildArgs(req)
	r.log.Infow("executing codex", "args", args, "workdir", req.WorkDir, "prompt_len", len(req.Prompt))

	cmd := exec.Command(r.CodexPath, args...) //nolint:gosec // binary path comes from operator config
	cmd.Dir = req.WorkDir
	cmd.Env = withDefaultRustLog(append(os.Environ(), r.Env...))
	// os/exec copies stdin on its own goroutine and closes the pipe at EOF,
	// which is the write-then-close the child needs to start its turn.
	cmd.Stdin = strings.NewReader(req.Prompt)
	setProcAttrs(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &codex.ExecutionError{Message: fmt.Sprintf("stdout pipe: %v", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &codex.ExecutionError{Message: fmt.Sprintf("stderr pipe: %v", err)}
	}

	if err := cmd.Start(); err != nil {
		return nil, &codex.ExecutionError{Message: fmt.Sprintf("start codex: %v", err)}
	}
	pid := cmd.Process.Pid

	invCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parser := stream.NewParser(r.log)
	reader := stream.NewReader(parser, r.log)

	drainCh := make(chan stream.Collected, 1)
	go func() { drainCh <- reader.Drain(invCtx, stdout, stderr) }()

	select {
	case <-invCtx.Done():
		// Deadline (or caller cancellation) won the race. Take the tree
		// down first; the read loops unblock when the pipes close.
		terminateTree(pid, r.KillGrace, nil)
		col := <-drainCh
		_ = cmd.Wait()

		if errors.Is(invCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			r.log.Warnw("codex invocation timed out", "timeout", timeout, "pid", pid)
			return nil, &codex.TimeoutError{Timeout: timeout, PartialOutput: col.Stdout}
		}
		return nil, &codex.ExecutionError{
			Message: fmt.Sprintf("invocation canceled: %v", ctx.Err()),
			Stderr:  col.Stderr,
		}

	case col := <-drainCh:
		// Both loops have stopped. The child is not trusted to exit once
		// its logical turn is done, so always terminate the tree.
		exited := make(chan struct{})
		waitCh := make(chan error, 1)
		go func() {
			waitCh <- cmd.Wait()
			close(exited)
		}()
		terminateTree(pid, r.KillGrace, exited)
		waitErr := <-waitCh

		res := parser.Result()
		exitCode := exitCodeOf(cmd, waitErr)
		if exitCode != 0 {
			// Best-effort: partial success beats total failure. A child we
			// killed after a completed turn lands here too.
			if res.HasContent() {
				r.log.Debugw("nonzero exit with usable content", "exit_code", exitCode)
				return res, nil
			}
			r.log.Errorw("codex exited without usable output", "exit_code", exitCode, "stderr", truncateForLog(col.Stderr))
			return nil, &codex.ExecutionError{
				Message:  fmt.Sprintf("codex exited with code %d", exitCode),
				ExitCode: exitCode,
				Stderr:   col.Stderr,
			}
		}
		return res, nil
	}
}

// exitCodeOf extracts the child's exit code from Wait's result. A child
// killed by signal reports -1.
func exitCodeOf(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

// withDefaultRustLog installs a quiet RUST_LOG filter for the codex binary
// unless the environment already sets one.
func withDefaultRustLog(env []string) []string {
	for _, kv := range env {
		if strings.HasPrefix(kv, "RUST_LOG=") {
			return env
		}
	}
	return append(env, "RUST_LOG="+codexDefaultRustLog)
}

func truncateForLog(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
