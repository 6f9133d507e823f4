package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/portfolio"
	"github.com/theirongolddev/finplan/internal/tui/components"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderPortfolioTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	switch {
	case a.opts.Holdings == nil:
		return components.ContentCard("Portfolio", muted.Render("No portfolio store configured."), cw)
	case !a.loaded:
		return components.ContentCard("Portfolio", muted.Render("Loading holdings..."), cw)
	case a.holdingsErr != nil:
		return components.ContentCard("Portfolio",
			lipgloss.NewStyle().Foreground(t.Loss).Render(a.holdingsErr.Error()), cw)
	}

	stats, ok := portfolio.QuickStats(a.holdings)
	if !ok {
		return components.ContentCard("Portfolio",
			muted.Render("No holdings yet. Add one with: finplan portfolio add"), cw)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Invested", Value: cli.FormatCompactDecimal(stats.TotalInvested), Note: fmt.Sprintf("%d holdings", stats.Count)},
		{Label: "Current", Value: cli.FormatCompactDecimal(stats.TotalCurrent)},
		{Label: "Returns", Value: cli.FormatCompactDecimal(stats.TotalReturns), Note: cli.FormatSignedPercent(stats.ReturnsPercent)},
		{Label: "Best", Value: stats.Best.Name, Note: cli.FormatSignedPercent(stats.BestReturnsPercent)},
	}, cw))
	b.WriteString("\n")

	slices := portfolio.Allocation(a.holdings)
	labelW := 0
	for _, s := range slices {
		labelW = max(labelW, len(s.Label))
	}
	barW := max(components.CardInnerWidth(cw)-labelW-10, 10)

	var alloc strings.Builder
	for i, s := range slices {
		if i > 0 {
			alloc.WriteString("\n")
		}
		alloc.WriteString(components.ShareBar(s.Label, s.SharePercent, labelW, barW))
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Allocation (%d types)", stats.UniqueTypes), alloc.String(), cw))
	return b.String()
}
