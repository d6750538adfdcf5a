package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"codexmcp/pkg/eventlog"
	"codexmcp/pkg/session"
)

// dataSource reads dashboard data from the broker's state directory.
type dataSource struct {
	store *session.Store
	audit *eventlog.Log
}

// newDataSource opens the session store and audit database under the
// broker's state directory.
func newDataSource() (*dataSource, error) {
	home, err := stateHome()
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(filepath.Join(home, "sessions"), nil)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	audit, err := eventlog.Open(filepath.Join(home, "invocations.db"), nil)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	return &dataSource{store: store, audit: audit}, nil
}

// stateHome returns the broker state directory from env or default.
func stateHome() (string, error) {
	if v := os.Getenv("CODEXMCP_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".codexmcp"), nil
}

// SessionsDir returns the watched sessions directory.
func (d *dataSource) SessionsDir() string {
	return d.store.Dir()
}

// Sessions returns persisted sessions ordered by last activity.
func (d *dataSource) Sessions() []*session.Session {
	return d.store.List()
}

// Invocations returns the audit records for one thread, oldest first.
// Errors degrade to an empty history.
func (d *dataSource) Invocations(threadID string) []eventlog.Record {
	recs, err := d.audit.ByThread(context.Background(), threadID)
	if err != nil {
		return nil
	}
	return recs
}

// Delete removes one session.
func (d *dataSource) Delete(threadID string) {
	d.store.Delete(threadID)
}
