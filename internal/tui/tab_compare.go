package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/tui/components"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCompareTab(cw int) string {
	t := theme.Active
	if a.goalErr != nil {
		return components.ContentCard("Compare",
			lipgloss.NewStyle().Foreground(t.Loss).Render(a.goalErr.Error()), cw)
	}

	var b strings.Builder

	bars := make([]components.GrowthBar, len(a.schedule))
	for i, p := range a.schedule {
		invested, _ := p.Invested.Float64()
		value, _ := p.Value.Float64()
		bars[i] = components.GrowthBar{Label: strconv.Itoa(p.Year), Invested: invested, Value: value}
	}
	chartH := 10
	if a.height > 0 {
		chartH = max(6, min(14, a.height-18))
	}
	title := fmt.Sprintf("Step-up plan from %s/month", cli.FormatMoney(a.goal.StepUpMonthly))
	chart := components.GrowthChart(bars, components.CardInnerWidth(cw), chartH)
	if a.scheduleErr != nil {
		chart = lipgloss.NewStyle().Foreground(t.Loss).Render(a.scheduleErr.Error())
	}
	b.WriteString(components.ContentCard(title, chart, cw))
	b.WriteString("\n")

	if a.compareErr != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Loss).Render(a.compareErr.Error()))
		return b.String()
	}
	b.WriteString(components.MetricCardRow(compareMetrics(a.compare), cw))
	return b.String()
}

func compareMetrics(c calc.CompareResult) []components.Metric {
	winner := "SIP"
	if c.Winner == calc.WinnerLumpSum {
		winner = "Lump sum"
	}
	return []components.Metric{
		{Label: "Invested", Value: cli.FormatCompactDecimal(c.SIP.Invested)},
		{Label: "SIP value", Value: cli.FormatCompactDecimal(c.SIP.FutureValue), Note: cli.FormatSignedPercent(c.SIP.ReturnPercent)},
		{Label: "Lump sum value", Value: cli.FormatCompactDecimal(c.LumpSum.FutureValue), Note: cli.FormatSignedPercent(c.LumpSum.ReturnPercent)},
		{Label: "Better", Value: winner, Note: "by " + cli.FormatCompactDecimal(c.Difference)},
	}
}
