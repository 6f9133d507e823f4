package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/tui/components"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderGoalTab(cw int) string {
	t := theme.Active

	leftW := min(38, cw/2)
	rightW := cw - leftW

	form := components.ContentCard("Goal", a.renderInputs(), leftW)

	var summary string
	if a.goalErr != nil {
		summary = components.ContentCard("Plan",
			lipgloss.NewStyle().Foreground(t.Loss).Render(a.goalErr.Error()), rightW)
	} else {
		summary = components.ContentCard("Plan", a.renderPlan(components.CardInnerWidth(rightW)), rightW)
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, form, summary))
	if a.goalErr == nil {
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(a.goalMetrics(), cw))
	}
	return b.String()
}

func (a App) renderInputs() string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	focusStyle := lipgloss.NewStyle().Foreground(t.Focus).Bold(true)

	var b strings.Builder
	for i, in := range a.inputs {
		label := fieldLabels[i]
		if i == a.focus {
			b.WriteString(focusStyle.Render("› " + label))
		} else {
			b.WriteString(labelStyle.Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	check := "[ ]"
	if a.inflationAdj {
		check = "[x]"
	}
	b.WriteString(labelStyle.Render(check + " inflation-adjusted [i]"))
	return b.String()
}

func (a App) renderPlan(innerW int) string {
	t := theme.Active
	g := a.goal

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	gainStyle := lipgloss.NewStyle().Foreground(t.Growth)

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-20s", label)) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	target := cli.FormatCompact(a.goalIn.Target)
	if name := presetName(a.presetIndex); name != "" {
		target += " (" + name + ")"
	}
	b.WriteString(row("Target", target))
	b.WriteString(row("Horizon", cli.FormatYears(a.goalIn.Years)))
	b.WriteString(row("Effective return", cli.FormatPercent(g.EffectiveReturnPct)))
	b.WriteString("\n")
	b.WriteString(row("Flat SIP / month", cli.FormatMoney(g.RequiredMonthly)))
	b.WriteString(row(fmt.Sprintf("Step-up %.0f%% start", g.StepUpPct), cli.FormatMoney(g.StepUpMonthly)))
	if g.SavingsWithStepUp.IsPositive() {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", "Lower first SIP")) +
			gainStyle.Render(cli.FormatMoney(g.SavingsWithStepUp)) + "\n")
	}
	b.WriteString("\n")

	invested, _ := g.TotalInvestment.Float64()
	b.WriteString(components.SplitBar(invested, a.goalIn.Target, innerW))
	return b.String()
}

func (a App) goalMetrics() []components.Metric {
	g := a.goal
	return []components.Metric{
		{Label: "Invested", Value: cli.FormatCompactDecimal(g.TotalInvestment)},
		{Label: "Growth", Value: cli.FormatCompactDecimal(g.TotalReturns), Note: cli.FormatSignedPercent(g.ReturnsPercent)},
		{Label: "Per day", Value: cli.FormatMoney(g.DailyAmount)},
		{Label: "Per week", Value: cli.FormatMoney(g.WeeklyAmount)},
	}
}

// presetName labels the target when it came from a preset.
func presetName(i int) string {
	if i < 0 || i >= len(calc.GoalPresets) {
		return ""
	}
	return calc.GoalPresets[i].Name
}
