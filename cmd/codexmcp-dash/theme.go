package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual styling for the codexmcp dashboard.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme for codexmcp dash.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("12"),  // Blue
		Secondary: lipgloss.Color("14"),  // Cyan
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// Styles holds the derived lipgloss styles used by the views.
type Styles struct {
	Title    lipgloss.Style
	Col      lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	StatusOK lipgloss.Style
	StatusNo lipgloss.Style
	Help     lipgloss.Style
}

// NewStyles derives the style set from a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Col:      lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		StatusOK: lipgloss.NewStyle().Foreground(theme.Success),
		StatusNo: lipgloss.NewStyle().Foreground(theme.Error),
		Help:     lipgloss.NewStyle().Foreground(theme.Muted),
	}
}
