package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TestFsnotifyReload verifies that file changes in the sessions directory
// trigger fsChangeMsg which causes immediate fetch instead of waiting for
// the poll timer.
func TestFsnotifyReload(t *testing.T) {
	tmpDir := t.TempDir()
	sessionsDir := filepath.Join(tmpDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0o750); err != nil {
		t.Fatalf("failed to create sessions dir: %v", err)
	}

	watchCmd := watchSessionsDir(sessionsDir)
	if watchCmd == nil {
		t.Fatal("watchSessionsDir returned nil, expected tea.Cmd")
	}

	msgChan := make(chan tea.Msg, 1)
	go func() {
		msgChan <- watchCmd()
	}()

	// Give watcher time to initialize
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(sessionsDir, "thread-watch.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	select {
	case msg := <-msgChan:
		if _, ok := msg.(fsChangeMsg); !ok {
			t.Errorf("expected fsChangeMsg, got %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for fsChangeMsg after file change")
	}
}

// TestWatchMissingDirFallsBackToPolling verifies that a missing sessions
// directory yields a nil command rather than an error.
func TestWatchMissingDirFallsBackToPolling(t *testing.T) {
	if cmd := watchSessionsDir(filepath.Join(t.TempDir(), "nope")); cmd != nil {
		t.Error("expected nil cmd for missing directory")
	}
}

// TestDebounceCollapsesBursts verifies that rapid events produce a single
// fsChangeMsg after the debounce window.
func TestDebounceCollapsesBursts(t *testing.T) {
	sessionsDir := t.TempDir()

	watchCmd := watchSessionsDir(sessionsDir)
	if watchCmd == nil {
		t.Fatal("watchSessionsDir returned nil")
	}

	msgChan := make(chan tea.Msg, 4)
	go func() {
		msgChan <- watchCmd()
	}()

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		name := filepath.Join(sessionsDir, "burst.json")
		if err := os.WriteFile(name, []byte("{}"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case msg := <-msgChan:
		if _, ok := msg.(fsChangeMsg); !ok {
			t.Errorf("expected fsChangeMsg, got %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced fsChangeMsg")
	}

	// The burst should have produced exactly one message.
	select {
	case msg := <-msgChan:
		t.Errorf("unexpected second message: %T", msg)
	case <-time.After(300 * time.Millisecond):
	}
}
