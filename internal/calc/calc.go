// Package calc implements the investment calculators: SIP, step-up SIP, lump
// sum, recurring deposit, SIP vs lump sum and goal-based planning.
//
// Rates are annual percentages (12 means 12%). Money results are rounded to
// whole currency units.
package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput wraps every calculator validation failure.
var ErrInvalidInput = errors.New("invalid calculator input")

// Upper bounds mirror the ranges the calculator inputs accept.
const (
	MaxYears     = 40
	MaxReturnPct = 30
	MaxInflation = 20
	MaxStepUpPct = 50
)

// Round rounds a currency amount to whole units.
func Round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(0)
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func monthlyRate(annualPct float64) float64 {
	return annualPct / 12 / 100
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return invalid("%s must be positive", name)
	}
	return nil
}

func checkYears(years int) error {
	if years < 1 || years > MaxYears {
		return invalid("years must be between 1 and %d, got %d", MaxYears, years)
	}
	return nil
}

func checkPct(name string, v, max float64) error {
	if math.IsNaN(v) || v < 0 || v > max {
		return invalid("%s must be between 0 and %v, got %v", name, max, v)
	}
	return nil
}
