package eventlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"codexmcp/pkg/eventlog"
)

func openLog(t *testing.T) *eventlog.Log {
	t.Helper()
	l, err := eventlog.Open(filepath.Join(t.TempDir(), "invocations.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestAppendAndRecent(t *testing.T) {
	l := openLog(t)
	ctx := context.Background()

	now := time.Now()
	id := l.Append(ctx, eventlog.Record{
		ThreadID:   "th_1",
		Mode:       eventlog.ModeNew,
		Sandbox:    "read-only",
		Outcome:    eventlog.OutcomeSuccess,
		Attempts:   1,
		Completed:  true,
		EventCount: 5,
		StartedAt:  now.Add(-time.Second),
		FinishedAt: now,
	})
	if id == "" {
		t.Fatal("expected a generated id")
	}

	recs, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.ID != id || rec.ThreadID != "th_1" || rec.Outcome != eventlog.OutcomeSuccess {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.Completed || rec.EventCount != 5 {
		t.Fatalf("expected completed record with 5 events, got %+v", rec)
	}
}

func TestByThreadOrdersOldestFirst(t *testing.T) {
	l := openLog(t)
	ctx := context.Background()

	base := time.Now()
	l.Append(ctx, eventlog.Record{ThreadID: "th_a", Mode: eventlog.ModeNew, Outcome: eventlog.OutcomeSuccess, FinishedAt: base})
	l.Append(ctx, eventlog.Record{ThreadID: "th_a", Mode: eventlog.ModeResume, Outcome: eventlog.OutcomeTimeout, FinishedAt: base.Add(time.Second)})
	l.Append(ctx, eventlog.Record{ThreadID: "th_other", Mode: eventlog.ModeNew, Outcome: eventlog.OutcomeError, FinishedAt: base.Add(2 * time.Second)})

	recs, err := l.ByThread(ctx, "th_a")
	if err != nil {
		t.Fatalf("ByThread: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records for th_a, got %d", len(recs))
	}
	if recs[0].Mode != eventlog.ModeNew || recs[1].Mode != eventlog.ModeResume {
		t.Fatalf("expected oldest first, got %+v", recs)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invocations.db")

	first, err := eventlog.Open(path, nil)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	first.Append(context.Background(), eventlog.Record{Mode: eventlog.ModeNew, Outcome: eventlog.OutcomeSuccess, FinishedAt: time.Now()})
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := eventlog.Open(path, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()

	recs, err := second.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected existing record to survive reopen, got %d", len(recs))
	}
}
