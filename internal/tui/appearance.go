package tui

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// Appearance is resolved once at startup: SYNCLINE_TUI_THEME=dark|light
// wins, otherwise the terminal background is queried.
func detectDarkBackground() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SYNCLINE_TUI_THEME"))) {
	case "dark":
		return true
	case "light":
		return false
	}
	return termenv.HasDarkBackground()
}
