// Package theme defines the color themes for the finplan TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used by the planner.
type Theme struct {
	Name        string
	Surface     lipgloss.Color // Card and panel backgrounds
	Border      lipgloss.Color
	Focus       lipgloss.Color // Border of the focused input
	TextDim     lipgloss.Color // Hints
	TextMuted   lipgloss.Color // Labels
	TextPrimary lipgloss.Color
	Accent      lipgloss.Color
	Invested    lipgloss.Color // Money put in
	Growth      lipgloss.Color // Money earned
	Loss        lipgloss.Color
	Warn        lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:        "flexoki-dark",
	Surface:     lipgloss.Color("#1C1B1A"),
	Border:      lipgloss.Color("#403E3C"),
	Focus:       lipgloss.Color("#3AA99F"),
	TextDim:     lipgloss.Color("#575653"),
	TextMuted:   lipgloss.Color("#878580"),
	TextPrimary: lipgloss.Color("#FFFCF0"),
	Accent:      lipgloss.Color("#3AA99F"),
	Invested:    lipgloss.Color("#4385BE"),
	Growth:      lipgloss.Color("#879A39"),
	Loss:        lipgloss.Color("#D14D41"),
	Warn:        lipgloss.Color("#DA702C"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:        "catppuccin-mocha",
	Surface:     lipgloss.Color("#313244"),
	Border:      lipgloss.Color("#585B70"),
	Focus:       lipgloss.Color("#89B4FA"),
	TextDim:     lipgloss.Color("#6C7086"),
	TextMuted:   lipgloss.Color("#A6ADC8"),
	TextPrimary: lipgloss.Color("#CDD6F4"),
	Accent:      lipgloss.Color("#89B4FA"),
	Invested:    lipgloss.Color("#74C7EC"),
	Growth:      lipgloss.Color("#A6E3A1"),
	Loss:        lipgloss.Color("#F38BA8"),
	Warn:        lipgloss.Color("#FAB387"),
}

// TokyoNight is a cool blue theme.
var TokyoNight = Theme{
	Name:        "tokyo-night",
	Surface:     lipgloss.Color("#24283B"),
	Border:      lipgloss.Color("#565F89"),
	Focus:       lipgloss.Color("#7AA2F7"),
	TextDim:     lipgloss.Color("#565F89"),
	TextMuted:   lipgloss.Color("#A9B1D6"),
	TextPrimary: lipgloss.Color("#C0CAF5"),
	Accent:      lipgloss.Color("#7AA2F7"),
	Invested:    lipgloss.Color("#7DCFFF"),
	Growth:      lipgloss.Color("#9ECE6A"),
	Loss:        lipgloss.Color("#F7768E"),
	Warn:        lipgloss.Color("#FF9E64"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:        "terminal",
	Surface:     lipgloss.Color("0"),
	Border:      lipgloss.Color("8"),
	Focus:       lipgloss.Color("6"),
	TextDim:     lipgloss.Color("8"),
	TextMuted:   lipgloss.Color("7"),
	TextPrimary: lipgloss.Color("15"),
	Accent:      lipgloss.Color("6"),
	Invested:    lipgloss.Color("4"),
	Growth:      lipgloss.Color("2"),
	Loss:        lipgloss.Color("1"),
	Warn:        lipgloss.Color("3"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
