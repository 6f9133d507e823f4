package components

import (
	"strings"

	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar with key hints on the left and a
// status message on the right.
func RenderStatusBar(width int, hints, status string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " " + hints
	right := status + " "
	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
