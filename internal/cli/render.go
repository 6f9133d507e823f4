package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	gainStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	investedStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// SeparatorRow is a row value that renders as a horizontal rule.
var SeparatorRow = []string{"---"}

// Table represents a bordered text table for CLI output. The first column is
// left-aligned and the rest are right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// KV is one label/value line of a summary block.
type KV struct {
	Label string
	Value string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderWarning renders a highlighted one-line note.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderGain colors a value by the sign of n.
func RenderGain(s string, n float64) string {
	if n < 0 {
		return lossStyle.Render(s)
	}
	return gainStyle.Render(s)
}

// RenderKV renders aligned label/value pairs.
func RenderKV(pairs []KV) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p.Label); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(padRight(p.Label, width)))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(p.Value))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}

	// Widths use display cells so the currency symbol doesn't skew columns.
	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			continue
		}
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮", widths))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + padRight(h, widths[i]) + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤", widths))
	}

	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule("├", "┼", "┤", widths))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == 0 {
				cell = padRight(cell, widths[i])
			} else {
				cell = padLeft(cell, widths[i])
			}
			b.WriteString(valueStyle.Render(" " + cell + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯", widths))
	return b.String()
}

// RenderSplitBar shows how much of a total came from contributions versus
// growth. A negative growth share renders as all contribution.
func RenderSplitBar(invested, total float64, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}

	share := invested / total
	if share > 1 {
		share = 1
	}
	if share < 0 {
		share = 0
	}
	filled := int(share*float64(width) + 0.5)

	return "  " +
		investedStyle.Render(strings.Repeat("█", filled)) +
		gainStyle.Render(strings.Repeat("█", width-filled)) +
		"\n  " +
		investedStyle.Render("■ invested ") + FormatPercent(share*100) +
		"   " +
		gainStyle.Render("■ returns ") + FormatPercent((1-share)*100) +
		"\n"
}

// RenderShareBar renders one allocation line: label, bar, and share.
func RenderShareBar(label string, sharePct float64, labelWidth, barWidth int) string {
	n := int(sharePct / 100 * float64(barWidth))
	n = min(max(n, 0), barWidth)
	return "  " + labelStyle.Render(padRight(label, labelWidth)) + " " +
		investedStyle.Render(strings.Repeat("█", n)) +
		dimStyle.Render(strings.Repeat("░", barWidth-n)) + " " +
		valueStyle.Render(FormatPercent(sharePct)) + "\n"
}

func rule(left, mid, right string, widths []int) string {
	var b strings.Builder
	b.WriteString(left)
	for i, w := range widths {
		b.WriteString(strings.Repeat("─", w+2))
		if i < len(widths)-1 {
			b.WriteString(mid)
		}
	}
	b.WriteString(right)
	return dimStyle.Render(b.String()) + "\n"
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == SeparatorRow[0]
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
