package components

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}

// SplitBar shows the invested share of a final value; the remainder is growth.
func SplitBar(invested, total float64, width int) string {
	t := theme.Active
	if total <= 0 || width < 4 {
		return ""
	}
	share := clamp01(invested / total)

	bar := progress.New(
		progress.WithSolidFill(string(t.Invested)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.Full = '█'
	bar.Empty = '█'
	bar.EmptyColor = string(t.Growth)

	legend := lipgloss.NewStyle().Foreground(t.Invested).Render(fmt.Sprintf("■ invested %.0f%%", share*100)) +
		"   " +
		lipgloss.NewStyle().Foreground(t.Growth).Render(fmt.Sprintf("■ growth %.0f%%", (1-share)*100))

	return bar.ViewAs(share) + "\n" + legend
}

// ShareBar renders one labeled allocation line.
func ShareBar(label string, sharePct float64, labelW, barWidth int) string {
	t := theme.Active
	share := clamp01(sharePct / 100)

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(share) + " " +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", share*100))
}
