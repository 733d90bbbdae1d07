package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the desk on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
