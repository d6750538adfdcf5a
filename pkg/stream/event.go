// Package stream parses the JSONL event stream emitted by codex exec --json
// and folds it into an aggregate turn result. Decoding is line-oriented and
// noise-tolerant: blank lines yield nothing and malformed lines are dropped
// with a diagnostic, never a fatal error.
package stream

import (
	"encoding/json"
	"strings"
)

// EventType identifies a known codex stream event.
type EventType string

// Event types recognized by the fold dispatch. Everything else is kept in
// the raw log but otherwise ignored.
const (
	EventThreadStarted     EventType = "thread.started"
	EventItemCompleted     EventType = "item.completed"
	EventTurnCompleted     EventType = "turn.completed"
	EventResponseCompleted EventType = "response.completed"
	EventError             EventType = "error"

	// EventUnknown is assigned when a line carries no type discriminator.
	EventUnknown EventType = "unknown"
)

// Event is one decoded line of the codex JSONL stream.
type Event struct {
	Type   EventType
	Fields map[string]any
	Raw    string
}

// DecodeLine decodes a single JSONL line into an Event. A blank line yields
// (nil, nil). A line that is not valid JSON yields a non-nil error; callers
// log and skip it.
func DecodeLine(line string) (*Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return nil, err
	}

	et := EventUnknown
	if t, ok := fields["type"].(string); ok && t != "" {
		et = EventType(t)
	}

	return &Event{Type: et, Fields: fields, Raw: line}, nil
}

// stringField returns fields[key] when it is a non-empty string.
func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// mapField returns fields[key] when it is an object.
func mapField(fields map[string]any, key string) map[string]any {
	if m, ok := fields[key].(map[string]any); ok {
		return m
	}
	return nil
}
