// Package bridge ties the subprocess runner, the session store, and the
// invocation audit log together behind the two operations the protocol
// front-end exposes: start a new codex session and reply to an existing one.
package bridge

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"codexmcp/pkg/codex"
	"codexmcp/pkg/eventlog"
	"codexmcp/pkg/session"
	"codexmcp/pkg/stream"
)

// Executor runs one codex invocation. *runner.Runner satisfies this.
type Executor interface {
	Execute(ctx context.Context, req codex.Request) (*stream.Result, error)
}

// Bridge orchestrates invocations against the executor and records their
// outcomes in the session store and audit log.
type Bridge struct {
	exec  Executor
	store *session.Store
	audit *eventlog.Log // nil disables auditing
	log   *zap.SugaredLogger

	// Defaults applied when a request leaves them blank.
	DefaultSandbox codex.SandboxMode
	DefaultModel   string
	Timeout        time.Duration
}

// New creates a Bridge. audit may be nil. A nil logger is replaced with a
// no-op logger.
func New(exec Executor, store *session.Store, audit *eventlog.Log, log *zap.SugaredLogger) *Bridge {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("bridge")
	return &Bridge{
		exec:           exec,
		store:          store,
		audit:          audit,
		log:            log,
		DefaultSandbox: codex.DefaultSandbox,
	}
}

// RunNew starts a fresh codex session and records it in the session store
// when the stream yields a thread id.
func (b *Bridge) RunNew(ctx context.Context, req codex.Request) (*codex.InvocationResult, error) {
	req.ThreadID = ""
	b.applyDefaults(&req)

	started := time.Now()
	res, err := b.exec.Execute(ctx, req)
	b.record(ctx, eventlog.ModeNew, req, res, err, started)
	if err != nil {
		return nil, err
	}

	if res.ThreadID != "" {
		b.store.Create(res.ThreadID, req.WorkDir, req.Sandbox, req.Model)
		if aerr := b.store.AppendTurns(res.ThreadID,
			session.Turn{Role: "user", Content: req.Prompt, Timestamp: started.UTC()},
			session.Turn{Role: "assistant", Content: res.Response(), Timestamp: time.Now().UTC()},
		); aerr != nil {
			b.log.Warnw("failed to record turns", "thread_id", res.ThreadID, "err", aerr)
		}
	}

	return toInvocationResult(res, res.ThreadID), nil
}

// RunReply continues an existing session. The stored session supplies the
// working directory, sandbox, and model; an unknown thread id still resumes,
// since codex itself keeps the conversation.
func (b *Bridge) RunReply(ctx context.Context, threadID, prompt string, timeout time.Duration) (*codex.InvocationResult, error) {
	req := codex.Request{Prompt: prompt, ThreadID: threadID, Timeout: timeout}

	known := b.store.Has(threadID)
	if known {
		sess, err := b.store.Get(threadID)
		if err == nil {
			req.WorkDir = sess.WorkDir
			req.Sandbox = sess.Sandbox
			req.Model = sess.Model
		}
	} else {
		b.log.Infow("replying to session not in local store", "thread_id", threadID)
	}
	b.applyDefaults(&req)

	started := time.Now()
	res, err := b.exec.Execute(ctx, req)
	b.record(ctx, eventlog.ModeResume, req, res, err, started)
	if err != nil {
		return nil, err
	}

	if known {
		if aerr := b.store.AppendTurns(threadID,
			session.Turn{Role: "user", Content: prompt, Timestamp: started.UTC()},
			session.Turn{Role: "assistant", Content: res.Response(), Timestamp: time.Now().UTC()},
		); aerr != nil {
			b.log.Warnw("failed to record turns", "thread_id", threadID, "err", aerr)
		}
	}

	id := res.ThreadID
	if id == "" {
		id = threadID
	}
	return toInvocationResult(res, id), nil
}

func (b *Bridge) applyDefaults(req *codex.Request) {
	if req.Sandbox == "" {
		req.Sandbox = b.DefaultSandbox
	}
	if req.Model == "" {
		req.Model = b.DefaultModel
	}
	if req.Timeout <= 0 && b.Timeout > 0 {
		req.Timeout = b.Timeout
	}
}

// record appends an audit row. Best-effort: auditing never affects the
// invocation outcome.
func (b *Bridge) record(ctx context.Context, mode string, req codex.Request, res *stream.Result, err error, started time.Time) {
	if b.audit == nil {
		return
	}
	rec := eventlog.Record{
		ThreadID:   req.ThreadID,
		Mode:       mode,
		Sandbox:    string(req.Sandbox),
		Model:      req.Model,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if res != nil {
		rec.ThreadID = res.ThreadID
		rec.Completed = res.Completed
		rec.EventCount = len(res.RawEvents)
		rec.Attempts = res.Attempts
	}
	if rec.ThreadID == "" {
		rec.ThreadID = req.ThreadID
	}
	switch {
	case err != nil:
		var te *codex.TimeoutError
		if errors.As(err, &te) {
			rec.Outcome = eventlog.OutcomeTimeout
		} else {
			rec.Outcome = eventlog.OutcomeError
		}
		rec.Error = err.Error()
	case res != nil && !res.Completed:
		rec.Outcome = eventlog.OutcomePartial
	default:
		rec.Outcome = eventlog.OutcomeSuccess
	}
	b.audit.Append(ctx, rec)
}

// toInvocationResult shapes the stream aggregate for the front-end.
func toInvocationResult(res *stream.Result, threadID string) *codex.InvocationResult {
	return &codex.InvocationResult{
		Success:       true,
		ThreadID:      threadID,
		AgentMessages: res.Response(),
		Reasoning:     res.Reasoning,
		Completed:     res.Completed,
		Errors:        res.Errors,
	}
}
