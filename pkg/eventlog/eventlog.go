// Package eventlog keeps a SQLite audit trail of codex invocations: one row
// per completed attempt sequence, recording outcome, attempt count, and how
// many raw stream events were folded. Writes are best-effort — a failed
// audit insert never fails the invocation it describes.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// schema creates the invocations table. CREATE IF NOT EXISTS keeps startup
// idempotent across versions without a migration framework.
const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id          TEXT PRIMARY KEY,
	thread_id   TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL,
	sandbox     TEXT NOT NULL DEFAULT '',
	model       TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	attempts    INTEGER NOT NULL DEFAULT 1,
	completed   INTEGER NOT NULL DEFAULT 0,
	event_count INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invocations_thread ON invocations(thread_id);
`

// Invocation modes.
const (
	ModeNew    = "new"
	ModeResume = "resume"
)

// Outcomes recorded per invocation.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// Record is one invocation audit row.
type Record struct {
	ID         string
	ThreadID   string
	Mode       string
	Sandbox    string
	Model      string
	Outcome    string
	Attempts   int
	Completed  bool
	EventCount int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Log is the invocation audit store.
type Log struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// Open opens (creating if needed) the audit database at path with WAL mode
// and a busy timeout, and ensures the schema exists.
func Open(path string, log *zap.SugaredLogger) (*Log, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("eventlog")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create invocations schema: %w", err)
	}

	return &Log{db: db, log: log}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append records one invocation. A zero ID is assigned a fresh uuid. Errors
// are logged and swallowed: auditing never fails the invocation.
func (l *Log) Append(ctx context.Context, rec Record) string {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO invocations
			(id, thread_id, mode, sandbox, model, outcome, attempts, completed, event_count, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ThreadID, rec.Mode, rec.Sandbox, rec.Model, rec.Outcome,
		rec.Attempts, boolToInt(rec.Completed), rec.EventCount, rec.Error,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		l.log.Warnw("append invocation record", "id", rec.ID, "err", err)
	}
	return rec.ID
}

// Recent returns the most recent n invocation records.
func (l *Log) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, thread_id, mode, sandbox, model, outcome, attempts, completed, event_count, error, started_at, finished_at
		FROM invocations ORDER BY finished_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent invocations: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByThread returns all invocation records for a thread id, oldest first.
func (l *Log) ByThread(ctx context.Context, threadID string) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, thread_id, mode, sandbox, model, outcome, attempts, completed, event_count, error, started_at, finished_at
		FROM invocations WHERE thread_id = ? ORDER BY finished_at ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("query invocations for thread %s: %w", threadID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var completed int
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.ThreadID, &rec.Mode, &rec.Sandbox, &rec.Model,
			&rec.Outcome, &rec.Attempts, &completed, &rec.EventCount, &rec.Error,
			&started, &finished); err != nil {
			return nil, fmt.Errorf("scan invocation row: %w", err)
		}
		rec.Completed = completed != 0
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocation rows: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
