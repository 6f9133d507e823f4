package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// GrowthBar is one column of a growth chart: what was put in and what it is
// worth.
type GrowthBar struct {
	Label    string
	Invested float64
	Value    float64
}

// GrowthChart renders stacked columns, invested at the bottom and growth
// above it. Columns are sampled evenly when they do not fit in width.
func GrowthChart(bars []GrowthBar, width, height int) string {
	if len(bars) == 0 || width < 15 || height < 3 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, b := range bars {
		peak = max(peak, b.Value, b.Invested)
	}
	if peak == 0 {
		peak = 1
	}
	step := niceStep(peak, max(height/2, 2))
	ceiling := math.Ceil(peak/step) * step
	ticks := max(int(math.Round(ceiling/step)), 1)
	rowsPerTick := max(height/ticks, 1)
	chartH := rowsPerTick * ticks

	labelW := max(len(axisLabel(ceiling))+1, 5)
	plotW := max(width-labelW-1, 5)

	bars = sampleBars(bars, (plotW+1)/3)
	n := len(bars)
	barW := min(max((plotW-(n-1))/n, 1), 4)

	axis := lipgloss.NewStyle().Foreground(t.TextDim)
	inv := lipgloss.NewStyle().Foreground(t.Invested)
	grow := lipgloss.NewStyle().Foreground(t.Growth)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		mid := ceiling * (float64(row) - 0.5) / float64(chartH)

		label := ""
		if row%rowsPerTick == 0 {
			label = axisLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", labelW, label)))

		for i, bar := range bars {
			if i > 0 {
				b.WriteString(" ")
			}
			cell := strings.Repeat(" ", barW)
			switch {
			case bar.Invested >= mid:
				cell = inv.Render(strings.Repeat("█", barW))
			case bar.Value >= mid:
				cell = grow.Render(strings.Repeat("█", barW))
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + n - 1
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", labelW, "0", strings.Repeat("─", axisLen))))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", labelW+1))
	b.WriteString(axis.Render(xLabels(bars, barW, axisLen)))
	return b.String()
}

// sampleBars keeps at most limit bars, always including the last.
func sampleBars(bars []GrowthBar, limit int) []GrowthBar {
	if limit < 2 || len(bars) <= limit {
		return bars
	}
	out := make([]GrowthBar, limit)
	for i := range out {
		out[i] = bars[i*(len(bars)-1)/(limit-1)]
	}
	return out
}

// xLabels places the first and last labels under their columns, plus any in
// between that have room.
func xLabels(bars []GrowthBar, barW, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, bar := range bars {
		pos := i * (barW + 1)
		lbl := []rune(bar.Label)
		if i == len(bars)-1 {
			pos = min(pos, axisLen-len(lbl))
		} else if pos <= lastEnd+1 {
			continue
		}
		if pos < 0 || pos+len(lbl) > axisLen {
			continue
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	return strings.TrimRight(string(buf), " ")
}

// niceStep picks a 1/2/5 x 10^k tick interval giving at most maxTicks ticks.
func niceStep(peak float64, maxTicks int) float64 {
	rough := peak / float64(maxTicks)
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if base*m >= rough {
			return base * m
		}
	}
	return base * 10
}

// axisLabel uses Indian short units: K, L (lakh), Cr (crore).
func axisLabel(v float64) string {
	trim := func(f float64) string {
		s := fmt.Sprintf("%.1f", f)
		return strings.TrimSuffix(s, ".0")
	}
	switch {
	case v >= 1e7:
		return trim(v/1e7) + "Cr"
	case v >= 1e5:
		return trim(v/1e5) + "L"
	case v >= 1e3:
		return trim(v/1e3) + "K"
	default:
		return trim(v)
	}
}
