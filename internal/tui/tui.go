package tui

import (
	"syncline/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive timeline editor. Mouse reporting uses cell
// motion so drags are delivered while a button is held.
func Run(s store.Store, db *store.DB) error {
	m := newAppModel(s, db)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
