// Package portfolio computes quick stats and allocation for local holdings.
package portfolio

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finplan/internal/model"
)

var hundred = decimal.NewFromInt(100)

// QuickStats computes totals and the best and worst performers by returns
// percentage. The first holding wins ties. ok is false for an empty list.
func QuickStats(invs []model.Investment) (stats model.PortfolioStats, ok bool) {
	if len(invs) == 0 {
		return stats, false
	}

	types := make(map[model.InvestmentType]struct{})
	stats.Best, stats.Worst = invs[0], invs[0]
	stats.BestReturnsPercent = invs[0].ReturnsPercent()
	stats.WorstReturnsPercent = stats.BestReturnsPercent

	for _, inv := range invs {
		stats.Count++
		stats.TotalInvested = stats.TotalInvested.Add(inv.InvestedAmount)
		stats.TotalCurrent = stats.TotalCurrent.Add(inv.CurrentValue)
		types[inv.Type] = struct{}{}

		pct := inv.ReturnsPercent()
		if pct > stats.BestReturnsPercent {
			stats.Best, stats.BestReturnsPercent = inv, pct
		}
		if pct < stats.WorstReturnsPercent {
			stats.Worst, stats.WorstReturnsPercent = inv, pct
		}
	}

	stats.UniqueTypes = len(types)
	stats.TotalReturns = stats.TotalCurrent.Sub(stats.TotalInvested)
	if stats.TotalInvested.IsPositive() {
		stats.ReturnsPercent, _ = stats.TotalReturns.Div(stats.TotalInvested).Mul(hundred).Float64()
	}
	return stats, true
}

// Allocation groups holdings by type and sums current value. Slices keep the
// order in which each type first appears.
func Allocation(invs []model.Investment) []model.AllocationSlice {
	var slices []model.AllocationSlice
	idx := make(map[model.InvestmentType]int)
	total := decimal.Zero

	for _, inv := range invs {
		i, ok := idx[inv.Type]
		if !ok {
			i = len(slices)
			idx[inv.Type] = i
			slices = append(slices, model.AllocationSlice{
				Type:  inv.Type,
				Label: inv.Type.Label(),
				Value: decimal.Zero,
			})
		}
		slices[i].Value = slices[i].Value.Add(inv.CurrentValue)
		total = total.Add(inv.CurrentValue)
	}

	if total.IsPositive() {
		for i := range slices {
			slices[i].SharePercent, _ = slices[i].Value.Div(total).Mul(hundred).Float64()
		}
	}
	return slices
}

// FilterByType returns holdings of the given type. An empty type keeps all.
func FilterByType(invs []model.Investment, typ model.InvestmentType) []model.Investment {
	if typ == "" {
		return invs
	}
	var result []model.Investment
	for _, inv := range invs {
		if inv.Type == typ {
			result = append(result, inv)
		}
	}
	return result
}

// FilterByName returns holdings whose name contains substr, ignoring case.
func FilterByName(invs []model.Investment, substr string) []model.Investment {
	if substr == "" {
		return invs
	}
	var result []model.Investment
	for _, inv := range invs {
		if strings.Contains(strings.ToLower(inv.Name), strings.ToLower(substr)) {
			result = append(result, inv)
		}
	}
	return result
}

// SortByValue orders holdings by current value, largest first.
func SortByValue(invs []model.Investment) {
	sort.SliceStable(invs, func(i, j int) bool {
		return invs[i].CurrentValue.GreaterThan(invs[j].CurrentValue)
	})
}
