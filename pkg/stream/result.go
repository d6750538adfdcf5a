package stream

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ToolCall records a function_call item from the stream.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	CallID    string         `json:"call_id"`
}

// CommandExecution records a function_call_output item with non-empty output.
type CommandExecution struct {
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// Result is the aggregate state folded from one turn's event stream.
// It has a single writer (the Parser that owns it) for the lifetime of one
// invocation. Completed is monotonic: once true it never reverts.
type Result struct {
	ThreadID          string
	AgentMessages     []string
	Reasoning         []string
	ToolCalls         []ToolCall
	CommandExecutions []CommandExecution
	Errors            []string
	Completed         bool
	RawEvents         []Event

	// Attempts is the number of spawn attempts the turn took. Filled by the
	// supervisor, not the parser.
	Attempts int
}

// Response returns the externally visible response text: agent messages
// joined with a double line break.
func (r *Result) Response() string {
	return strings.Join(r.AgentMessages, "\n\n")
}

// HasContent reports whether the aggregate carries anything worth returning
// to a caller: agent text or a thread id. Partial results that satisfy this
// are preferred over raising, both on the nonzero-exit path and after retry
// exhaustion.
func (r *Result) HasContent() bool {
	return len(r.AgentMessages) > 0 || r.ThreadID != ""
}

// Parser decodes JSONL lines and folds them into a Result. It holds no I/O;
// given the same ordered lines it produces the same aggregate.
type Parser struct {
	res Result
	log *zap.SugaredLogger
}

// NewParser creates a Parser. A nil logger is replaced with a no-op logger.
func NewParser(log *zap.SugaredLogger) *Parser {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Parser{log: log}
}

// Result returns the aggregate folded so far.
func (p *Parser) Result() *Result {
	return &p.res
}

// ParseLine decodes one line and folds the event into the aggregate.
// Blank and malformed lines return nil; malformed lines are logged and do
// not reach the raw event log.
func (p *Parser) ParseLine(line string) *Event {
	ev, err := DecodeLine(line)
	if err != nil {
		p.log.Warnw("dropping malformed stream line", "line", truncate(line, 100), "err", err)
		return nil
	}
	if ev == nil {
		return nil
	}
	p.fold(ev)
	return ev
}

// fold dispatches on the event type. Unrecognized types are kept in the raw
// log and otherwise ignored.
func (p *Parser) fold(ev *Event) {
	p.res.RawEvents = append(p.res.RawEvents, *ev)

	switch ev.Type {
	case EventThreadStarted:
		p.foldThreadStarted(ev.Fields)
	case EventItemCompleted:
		p.foldItemCompleted(ev.Fields)
	case EventTurnCompleted, EventResponseCompleted:
		// Two markers for the same logical condition; folding either or
		// both is idempotent under the monotonic invariant.
		p.res.Completed = true
	case EventError:
		p.foldError(ev.Fields)
	default:
		p.log.Debugw("no handler for event type", "type", ev.Type)
	}
}

// foldThreadStarted extracts the thread id from either alias field.
func (p *Parser) foldThreadStarted(fields map[string]any) {
	id := stringField(fields, "thread_id")
	if id == "" {
		id = stringField(fields, "threadId")
	}
	if id != "" {
		p.res.ThreadID = id
		p.log.Infow("thread started", "thread_id", id)
	}
}

func (p *Parser) foldItemCompleted(fields map[string]any) {
	item := mapField(fields, "item")
	if item == nil {
		return
	}

	switch stringField(item, "type") {
	case "message":
		p.foldMessageItem(item)
	case "agent_message":
		if text := stringField(item, "text"); text != "" {
			p.res.AgentMessages = append(p.res.AgentMessages, text)
		}
	case "reasoning":
		if text := stringField(item, "text"); text != "" {
			p.res.Reasoning = append(p.res.Reasoning, text)
		}
	case "function_call":
		p.foldFunctionCall(item)
	case "function_call_output":
		callID := stringField(item, "call_id")
		output := stringField(item, "output")
		if callID != "" && output != "" {
			p.res.CommandExecutions = append(p.res.CommandExecutions, CommandExecution{
				CallID: callID,
				Output: output,
			})
		}
	}
}

// foldMessageItem routes assistant-role content parts: text parts and bare
// string parts into agent messages, reasoning parts into reasoning.
func (p *Parser) foldMessageItem(item map[string]any) {
	if stringField(item, "role") != "assistant" {
		return
	}
	content, ok := item["content"].([]any)
	if !ok {
		return
	}

	for _, part := range content {
		switch part := part.(type) {
		case map[string]any:
			switch stringField(part, "type") {
			case "text":
				if text := stringField(part, "text"); text != "" {
					p.res.AgentMessages = append(p.res.AgentMessages, text)
				}
			case "reasoning":
				text := stringField(part, "text")
				if text == "" {
					text = stringField(part, "content")
				}
				if text != "" {
					p.res.Reasoning = append(p.res.Reasoning, text)
				}
			}
		case string:
			p.res.AgentMessages = append(p.res.AgentMessages, part)
		}
	}
}

func (p *Parser) foldFunctionCall(item map[string]any) {
	args := mapField(item, "arguments")
	if args == nil {
		args = map[string]any{}
	}
	p.res.ToolCalls = append(p.res.ToolCalls, ToolCall{
		Name:      stringField(item, "name"),
		Arguments: args,
		CallID:    stringField(item, "call_id"),
	})
}

func (p *Parser) foldError(fields map[string]any) {
	msg := stringField(fields, "message")
	if msg == "" {
		msg = stringField(fields, "error")
	}
	if msg == "" {
		msg = fmt.Sprintf("%v", fields)
	}
	p.res.Errors = append(p.res.Errors, msg)
	p.log.Errorw("codex stream error", "message", msg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
