// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the symbol prefixed to money values.
var Currency = "₹"

// FormatCompact formats an amount with Indian short suffixes.
// e.g., 12500000 -> "₹1.25 Cr", 350000 -> "₹3.50 L", 4200 -> "₹4.2K"
func FormatCompact(amount float64) string {
	if amount < 0 {
		return "-" + FormatCompact(-amount)
	}

	switch {
	case amount >= 10_000_000:
		return fmt.Sprintf("%s%.2f Cr", Currency, amount/10_000_000)
	case amount >= 100_000:
		return fmt.Sprintf("%s%.2f L", Currency, amount/100_000)
	case amount >= 1_000:
		return fmt.Sprintf("%s%.1fK", Currency, amount/1_000)
	default:
		return Currency + FormatGrouped(int64(math.Round(amount)))
	}
}

// FormatCompactDecimal is FormatCompact for decimal amounts.
func FormatCompactDecimal(d decimal.Decimal) string {
	f, _ := d.Float64()
	return FormatCompact(f)
}

// FormatGrouped adds Indian digit grouping to an integer: the last three
// digits, then groups of two.
// e.g., 1234567 -> "12,34,567", 100000 -> "1,00,000"
func FormatGrouped(n int64) string {
	if n < 0 {
		return "-" + FormatGrouped(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

// FormatMoney renders a whole-unit amount with currency and grouping.
func FormatMoney(d decimal.Decimal) string {
	return Currency + FormatGrouped(d.Round(0).IntPart())
}

// FormatSignedMoney is FormatMoney with an explicit sign.
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg())
	}
	return "+" + FormatMoney(d)
}

// FormatPercent formats a value already expressed in percent.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatSignedPercent is FormatPercent with an explicit sign.
func FormatSignedPercent(pct float64) string {
	if pct >= 0 {
		return "+" + FormatPercent(pct)
	}
	return FormatPercent(pct)
}

// FormatYears renders a horizon such as "1 year" or "15 years".
func FormatYears(years int) string {
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}
