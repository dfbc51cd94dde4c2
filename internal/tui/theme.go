package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header    lipgloss.Style
	statusBar lipgloss.Style
	errText   lipgloss.Style

	laneLabel   lipgloss.Style
	masterLabel lipgloss.Style
	ruler       lipgloss.Style
	laneEmpty   lipgloss.Style
	playhead    lipgloss.Style
	snapMark    lipgloss.Style

	clipSelected lipgloss.Style
	clipGhost    lipgloss.Style
	clipRefused  lipgloss.Style
	clipPinned   lipgloss.Style

	hiddenHint lipgloss.Style
}

func newTheme(dark bool) theme {
	muted := lipgloss.Color("245")
	accent := lipgloss.Color("39")
	danger := lipgloss.Color("203")
	if !dark {
		muted = lipgloss.Color("242")
		accent = lipgloss.Color("27")
		danger = lipgloss.Color("160")
	}
	return theme{
		header:    lipgloss.NewStyle().Bold(true),
		statusBar: lipgloss.NewStyle().Foreground(muted),
		errText:   lipgloss.NewStyle().Foreground(danger),

		laneLabel:   lipgloss.NewStyle().Foreground(muted),
		masterLabel: lipgloss.NewStyle().Bold(true).Foreground(accent),
		ruler:       lipgloss.NewStyle().Foreground(muted),
		laneEmpty:   lipgloss.NewStyle().Foreground(muted),
		playhead:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		snapMark:    lipgloss.NewStyle().Foreground(accent).Reverse(true),

		clipSelected: lipgloss.NewStyle().Reverse(true).Bold(true),
		clipGhost:    lipgloss.NewStyle().Foreground(muted),
		clipRefused:  lipgloss.NewStyle().Foreground(danger),
		clipPinned:   lipgloss.NewStyle().Underline(true),

		hiddenHint: lipgloss.NewStyle().Foreground(muted).Italic(true),
	}
}
