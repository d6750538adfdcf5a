// Package main implements the codexmcp-dash interactive dashboard.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	ds, err := newDataSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing dashboard: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(ds), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
