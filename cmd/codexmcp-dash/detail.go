package main

import (
	"fmt"
	"strings"

	"codexmcp/pkg/eventlog"
)

// maxTurnPreview caps how much of a turn's content the detail view shows.
const maxTurnPreview = 400

// renderDetail renders one session with its turn history and audit trail.
func (m Model) renderDetail() string {
	s := m.detail

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("session " + s.ThreadID))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Cwd:         %s\n", s.WorkDir)
	fmt.Fprintf(&sb, "Sandbox:     %s\n", s.Sandbox)
	if s.Model != "" {
		fmt.Fprintf(&sb, "Model:       %s\n", s.Model)
	}
	fmt.Fprintf(&sb, "Created:     %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Last active: %s\n", s.LastActive.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Turns:       %d\n", s.TurnCount)

	if len(s.History) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Title.Render("history"))
		sb.WriteString("\n")
		for _, turn := range s.History {
			role := m.styles.Selected.Render(turn.Role)
			content := strings.TrimSpace(turn.Content)
			fmt.Fprintf(&sb, "\n%s  %s\n%s\n",
				role,
				m.styles.Muted.Render(turn.Timestamp.Local().Format("15:04:05")),
				truncate(content, maxTurnPreview))
		}
	}

	if len(m.detailRecs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Title.Render("invocations"))
		sb.WriteString("\n")
		for _, rec := range m.detailRecs {
			fmt.Fprintf(&sb, "%s  %-8s %s\n",
				rec.FinishedAt.Local().Format("2006-01-02 15:04:05"),
				rec.Mode,
				m.renderOutcome(rec))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("esc back · q back"))
	return sb.String()
}

// renderOutcome colors the audit outcome by severity.
func (m Model) renderOutcome(rec eventlog.Record) string {
	switch rec.Outcome {
	case eventlog.OutcomeSuccess:
		return m.styles.StatusOK.Render(rec.Outcome)
	case eventlog.OutcomeError, eventlog.OutcomeTimeout:
		return m.styles.StatusNo.Render(rec.Outcome)
	default:
		return m.styles.Muted.Render(rec.Outcome)
	}
}
