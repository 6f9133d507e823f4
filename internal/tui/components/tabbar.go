package components

import (
	"strings"

	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune // shortcut; rendered in brackets after the name
}

// Tabs defines the planner's screens.
var Tabs = []Tab{
	{Name: "Goal", Key: 'g'},
	{Name: "Compare", Key: 'c'},
	{Name: "Portfolio", Key: 'p'},
}

const tabSep = " "

// tabLabel is the plain text of a tab. The active tab drops its shortcut.
func tabLabel(tab Tab, active bool) string {
	if active {
		return " " + tab.Name + " "
	}
	return " " + tab.Name + "[" + string(tab.Key) + "] "
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Underline(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tabLabel(tab, true))
		} else {
			parts[i] = inactiveStyle.Render(tabLabel(tab, false))
		}
	}
	return strings.Join(parts, tabSep)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabAtX maps a click column on the tab bar to a tab index, or -1.
func TabAtX(x, activeIdx int) int {
	pos := 0
	for i, tab := range Tabs {
		w := lipgloss.Width(tabLabel(tab, i == activeIdx))
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + len(tabSep)
	}
	return -1
}
