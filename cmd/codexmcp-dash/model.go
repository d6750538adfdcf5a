package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codexmcp/pkg/eventlog"
	"codexmcp/pkg/session"
)

// tickMsg is sent by Bubble Tea on every tick interval.
// Used to trigger periodic data refresh from the state directory.
type tickMsg time.Time

// sessionsMsg carries freshly loaded sessions.
type sessionsMsg []*session.Session

// invocationsMsg carries the audit records for the session under detail.
type invocationsMsg []eventlog.Record

// tickCmd returns a command that sends a tickMsg after 2 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSessionsCmd returns a tea.Cmd that loads sessions from the store.
func fetchSessionsCmd(ds *dataSource) tea.Cmd {
	return func() tea.Msg {
		return sessionsMsg(ds.Sessions())
	}
}

// fetchInvocationsCmd returns a tea.Cmd that loads one thread's audit trail.
func fetchInvocationsCmd(ds *dataSource, threadID string) tea.Cmd {
	return func() tea.Msg {
		return invocationsMsg(ds.Invocations(threadID))
	}
}

// ViewType represents different views in the dashboard.
type ViewType int

const (
	// ListView shows the session table.
	ListView ViewType = iota
	// DetailView shows one session's history and invocations.
	DetailView
)

// Model is the Bubble Tea model for the codexmcp dashboard.
type Model struct {
	ds     *dataSource
	theme  Theme
	styles Styles

	activeView ViewType
	sessions   []*session.Session
	selected   int

	// Detail view state
	detail     *session.Session
	detailRecs []eventlog.Record

	// Filter state
	filter    textinput.Model
	filtering bool

	width  int
	height int
}

// newModel creates a new Model initialized with ListView active.
func newModel(ds *dataSource) Model {
	theme := DefaultTheme()

	ti := textinput.New()
	ti.Placeholder = "Filter by thread or cwd..."
	ti.CharLimit = 80
	ti.Width = 40

	return Model{
		ds:     ds,
		theme:  theme,
		styles: NewStyles(theme),
		filter: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchSessionsCmd(m.ds), tickCmd()}
	if watch := watchSessionsDir(m.ds.SessionsDir()); watch != nil {
		cmds = append(cmds, watch)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSessionsCmd(m.ds), tickCmd())

	case fsChangeMsg:
		// Re-arm the watcher after each delivery.
		cmds := []tea.Cmd{fetchSessionsCmd(m.ds)}
		if watch := watchSessionsDir(m.ds.SessionsDir()); watch != nil {
			cmds = append(cmds, watch)
		}
		return m, tea.Batch(cmds...)

	case sessionsMsg:
		m.sessions = msg
		m.clampSelection()
		return m, nil

	case invocationsMsg:
		m.detailRecs = msg
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

// handleKeys routes keyboard input according to the active view and filter
// focus.
func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.filtering {
		switch key {
		case "enter", "esc":
			m.filtering = false
			m.filter.Blur()
			if key == "esc" {
				m.filter.SetValue("")
			}
			m.clampSelection()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.clampSelection()
			return m, cmd
		}
	}

	if m.activeView == DetailView {
		switch key {
		case "esc", "q":
			m.activeView = ListView
			m.detail = nil
			m.detailRecs = nil
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.visibleSessions())-1 {
			m.selected++
		}
	case "enter":
		visible := m.visibleSessions()
		if m.selected < len(visible) {
			m.detail = visible[m.selected]
			m.activeView = DetailView
			return m, fetchInvocationsCmd(m.ds, m.detail.ThreadID)
		}
	case "d":
		visible := m.visibleSessions()
		if m.selected < len(visible) {
			m.ds.Delete(visible[m.selected].ThreadID)
			return m, fetchSessionsCmd(m.ds)
		}
	case "r":
		return m, fetchSessionsCmd(m.ds)
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// visibleSessions applies the current filter to the loaded sessions.
func (m Model) visibleSessions() []*session.Session {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		return m.sessions
	}
	matched := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if strings.Contains(strings.ToLower(s.ThreadID), query) ||
			strings.Contains(strings.ToLower(s.WorkDir), query) {
			matched = append(matched, s)
		}
	}
	return matched
}

// clampSelection keeps the cursor inside the visible session range.
func (m *Model) clampSelection() {
	if max := len(m.visibleSessions()) - 1; m.selected > max {
		m.selected = max
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.activeView == DetailView && m.detail != nil {
		return m.renderDetail()
	}
	return m.renderList()
}
