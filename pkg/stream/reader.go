package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxLineSize bounds a single JSONL line. Codex aggregates tool output into
// single events, so lines can be large.
const maxLineSize = 10 * 1024 * 1024

// DefaultStderrPoll is how long the stderr loop lingers for trailing
// diagnostics once the stdout loop has observed completion.
const DefaultStderrPoll = 500 * time.Millisecond

// Collected is the text gathered by one Drain call. Stdout is the verbatim
// primary-channel text (kept for timeout partials), Stderr the secondary
// diagnostics.
type Collected struct {
	Stdout string
	Stderr string
}

// Reader concurrently drains a codex subprocess's stdout and stderr.
//
// The stdout loop folds each line through the Parser and stops within one
// line of the aggregate reporting completion; the child may keep emitting or
// hang afterwards, so waiting for stream closure would hang with it. The
// stderr loop is interruptible on the shared completion signal rather than
// blocking on the pipe, so it cannot delay the end of the operation.
type Reader struct {
	parser     *Parser
	stderrPoll time.Duration
	log        *zap.SugaredLogger
}

// NewReader creates a Reader folding into parser. A nil logger is replaced
// with a no-op logger.
func NewReader(parser *Parser, log *zap.SugaredLogger) *Reader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reader{parser: parser, stderrPoll: DefaultStderrPoll, log: log}
}

// SetStderrPoll overrides the stderr linger interval (for testing).
func (r *Reader) SetStderrPoll(d time.Duration) {
	r.stderrPoll = d
}

// Drain consumes both channels until the stop condition and returns the
// collected text. It returns only once both loops have stopped. The
// underlying reads unblock when the caller terminates the child and the
// pipes close, so Drain always returns after process-tree termination.
func (r *Reader) Drain(ctx context.Context, stdout, stderr io.Reader) Collected {
	var col Collected

	// Closed when the stdout loop stops, whether by completion, EOF, or
	// context cancellation. The stderr loop observes it without delay.
	stdoutDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(stdoutDone)
		col.Stdout = r.drainStdout(ctx, stdout)
	}()

	go func() {
		defer wg.Done()
		col.Stderr = r.drainStderr(ctx, stderr, stdoutDone)
	}()

	wg.Wait()
	return col
}

// drainStdout reads one line at a time, folding each through the parser,
// and stops immediately once the aggregate reports completion.
func (r *Reader) drainStdout(ctx context.Context, stdout io.Reader) string {
	var buf strings.Builder

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return buf.String()
		}

		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')

		r.parser.ParseLine(line)
		if r.parser.Result().Completed {
			r.log.Debug("turn completed, stopping stdout read")
			return buf.String()
		}
	}

	if err := scanner.Err(); err != nil {
		r.log.Debugw("stdout read ended", "err", err)
	}
	return buf.String()
}

// drainStderr collects secondary-channel lines. Reads happen on a helper
// goroutine feeding a channel so the loop can select on the completion
// signal instead of blocking on the pipe; after the signal it lingers one
// poll interval for trailing diagnostics, then returns.
func (r *Reader) drainStderr(ctx context.Context, stderr io.Reader, stdoutDone <-chan struct{}) string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var buf strings.Builder
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return buf.String()
			}
			buf.WriteString(line)
			buf.WriteByte('\n')

		case <-ctx.Done():
			return buf.String()

		case <-stdoutDone:
			// Primary loop stopped; grab anything already buffered, then go.
			linger := time.NewTimer(r.stderrPoll)
			defer linger.Stop()
			for {
				select {
				case line, ok := <-lines:
					if !ok {
						return buf.String()
					}
					buf.WriteString(line)
					buf.WriteByte('\n')
				case <-linger.C:
					return buf.String()
				case <-ctx.Done():
					return buf.String()
				}
			}
		}
	}
}
