package stream_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"codexmcp/pkg/stream"
)

func TestDrain_StopsStdoutOnCompletion(t *testing.T) {
	stdout := strings.Join([]string{
		`{"type":"thread.started","thread_id":"th_1"}`,
		`{"type":"item.completed","item":{"type":"agent_message","text":"done"}}`,
		`{"type":"turn.completed"}`,
		`{"type":"item.completed","item":{"type":"agent_message","text":"after completion"}}`,
	}, "\n") + "\n"

	p := stream.NewParser(nil)
	r := stream.NewReader(p, nil)
	r.SetStderrPoll(10 * time.Millisecond)

	col := r.Drain(context.Background(), strings.NewReader(stdout), strings.NewReader(""))

	res := p.Result()
	if !res.Completed {
		t.Fatal("expected completed aggregate")
	}
	if len(res.AgentMessages) != 1 || res.AgentMessages[0] != "done" {
		t.Fatalf("reader must stop folding at completion, got messages %v", res.AgentMessages)
	}
	if strings.Contains(col.Stdout, "after completion") {
		t.Fatalf("collected stdout must stop at the completion line, got %q", col.Stdout)
	}
}

func TestDrain_StopsOnEOFWithoutCompletion(t *testing.T) {
	stdout := `{"type":"item.completed","item":{"type":"agent_message","text":"partial"}}` + "\n"

	p := stream.NewParser(nil)
	r := stream.NewReader(p, nil)
	r.SetStderrPoll(10 * time.Millisecond)

	r.Drain(context.Background(), strings.NewReader(stdout), strings.NewReader(""))

	res := p.Result()
	if res.Completed {
		t.Fatal("expected incomplete aggregate on EOF")
	}
	if len(res.AgentMessages) != 1 {
		t.Fatalf("expected the partial message folded, got %v", res.AgentMessages)
	}
}

func TestDrain_CollectsStderr(t *testing.T) {
	p := stream.NewParser(nil)
	r := stream.NewReader(p, nil)
	r.SetStderrPoll(10 * time.Millisecond)

	col := r.Drain(context.Background(),
		strings.NewReader(`{"type":"turn.completed"}`+"\n"),
		strings.NewReader("warn: something\nwarn: else\n"))

	if !strings.Contains(col.Stderr, "warn: something") || !strings.Contains(col.Stderr, "warn: else") {
		t.Fatalf("expected both stderr lines collected, got %q", col.Stderr)
	}
}

// hangingReader blocks forever, like a stderr pipe held open by a child that
// never exits.
type hangingReader struct{}

func (hangingReader) Read([]byte) (int, error) {
	select {} // block until the test process exits
}

func TestDrain_StderrDoesNotBlockCompletion(t *testing.T) {
	p := stream.NewParser(nil)
	r := stream.NewReader(p, nil)
	r.SetStderrPoll(20 * time.Millisecond)

	done := make(chan stream.Collected, 1)
	go func() {
		done <- r.Drain(context.Background(),
			strings.NewReader(`{"type":"turn.completed"}`+"\n"),
			hangingReader{})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drain must return once the stdout loop observes completion, even with stderr open")
	}
}

func TestDrain_ContextCancellationStopsBothLoops(t *testing.T) {
	// Neither stream ever completes or closes.
	stdoutPR, _ := io.Pipe()
	stderrPR, _ := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	p := stream.NewParser(nil)
	r := stream.NewReader(p, nil)
	r.SetStderrPoll(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Drain(ctx, stdoutPR, stderrPR)
		close(done)
	}()

	cancel()
	_ = stdoutPR.CloseWithError(context.Canceled) // unblock the stdout scanner

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drain must return after cancellation once the stdout pipe closes")
	}
}
