package main

import (
	"fmt"
	"strings"

	"codexmcp/pkg/session"
)

// Column layout for the session table.
var sessionColWidths = []int{38, 6, 18, 17, 30}

// truncate shortens s to max characters, appending "…" if truncated.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// renderList renders the session table view.
func (m Model) renderList() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("codexmcp sessions"))
	sb.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		sb.WriteString(m.filter.View())
		sb.WriteString("\n\n")
	}

	visible := m.visibleSessions()
	if len(visible) == 0 {
		sb.WriteString(m.styles.Muted.Render("No sessions"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.renderSessionRows(visible))
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("↑/↓ move · enter detail · d delete · / filter · r refresh · q quit"))
	return sb.String()
}

// renderSessionRows renders the table header and one row per session.
func (m Model) renderSessionRows(sessions []*session.Session) string {
	var sb strings.Builder

	headers := []string{"Thread", "Turns", "Sandbox", "Last Active", "Cwd"}
	headerParts := make([]string, 0, len(headers))
	for i, header := range headers {
		style := m.styles.Col.
			Width(sessionColWidths[i]).
			Bold(true).
			Foreground(m.theme.Primary)
		headerParts = append(headerParts, style.Render(header))
	}
	sb.WriteString(strings.Join(headerParts, " "))
	sb.WriteString("\n")

	sb.WriteString(strings.Repeat("─", 112))
	sb.WriteString("\n")

	for i, s := range sessions {
		sb.WriteString(m.renderSessionRow(s, i == m.selected))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderSessionRow renders a single session row, highlighting the selection.
func (m Model) renderSessionRow(s *session.Session, selected bool) string {
	base := m.styles.Col
	if selected {
		base = m.styles.Selected
	}

	cells := []string{
		base.Width(sessionColWidths[0]).Render(truncate(s.ThreadID, sessionColWidths[0])),
		base.Width(sessionColWidths[1]).Render(fmt.Sprintf("%d", s.TurnCount)),
		base.Width(sessionColWidths[2]).Render(truncate(string(s.Sandbox), sessionColWidths[2])),
		base.Width(sessionColWidths[3]).Render(s.LastActive.Local().Format("2006-01-02 15:04")),
		base.Width(sessionColWidths[4]).Render(truncate(s.WorkDir, sessionColWidths[4])),
	}

	return strings.Join(cells, " ")
}
