// Package session persists codex conversation continuations: one JSON file
// per thread id, loaded eagerly at store construction and written back on
// every mutation. Records are small and access is infrequent, so a single
// coarse lock serializes all mutating access.
package session

import (
	"time"

	"codexmcp/pkg/codex"
)

// Turn is one request/response entry in a session's history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the persisted record of one codex conversation thread.
type Session struct {
	ThreadID   string            `json:"thread_id"`
	CreatedAt  time.Time         `json:"created_at"`
	LastActive time.Time         `json:"last_active"`
	WorkDir    string            `json:"cwd"`
	Sandbox    codex.SandboxMode `json:"sandbox"`
	Model      string            `json:"model,omitempty"`
	TurnCount  int               `json:"turn_count"`
	History    []Turn            `json:"history"`
}

// AddTurn appends a history entry in memory and bumps the counters. The
// change is not persisted until Store.Update.
func (s *Session) AddTurn(role, content string) {
	now := time.Now()
	s.History = append(s.History, Turn{Role: role, Content: content, Timestamp: now})
	s.TurnCount++
	s.LastActive = now
}
