package calc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finplan/internal/solver"
)

// DefaultStepUpPct is the annual increase assumed for the step-up plan.
const DefaultStepUpPct = 10

// GoalInput describes a savings goal.
type GoalInput struct {
	Target            float64 `json:"target"`
	Years             int     `json:"years"`
	AnnualReturnPct   float64 `json:"annual_return_pct"`
	InflationAdjusted bool    `json:"inflation_adjusted"`
	InflationPct      float64 `json:"inflation_pct"`
	StepUpPct         float64 `json:"step_up_pct"`
}

// GoalResult compares a flat monthly plan with a step-up plan.
type GoalResult struct {
	EffectiveReturnPct float64         `json:"effective_return_pct"`
	RequiredMonthly    decimal.Decimal `json:"required_monthly"`
	TotalInvestment    decimal.Decimal `json:"total_investment"`
	TotalReturns       decimal.Decimal `json:"total_returns"`
	ReturnsPercent     float64         `json:"returns_percent"`
	StepUpPct          float64         `json:"step_up_pct"`
	StepUpMonthly      decimal.Decimal `json:"step_up_monthly"`
	StepUpAchieved     decimal.Decimal `json:"step_up_achieved"`
	StepUpIterations   int             `json:"step_up_iterations"`
	SavingsWithStepUp  decimal.Decimal `json:"savings_with_step_up"`
	DailyAmount        decimal.Decimal `json:"daily_amount"`
	WeeklyAmount       decimal.Decimal `json:"weekly_amount"`
}

// Validate checks the input ranges.
func (in GoalInput) Validate() error {
	if err := checkAmount("target amount", in.Target); err != nil {
		return err
	}
	if err := checkYears(in.Years); err != nil {
		return err
	}
	if err := checkPct("expected return", in.AnnualReturnPct, MaxReturnPct); err != nil {
		return err
	}
	if err := checkPct("step-up", in.StepUpPct, MaxStepUpPct); err != nil {
		return err
	}
	if !in.InflationAdjusted {
		return nil
	}
	if err := checkPct("inflation", in.InflationPct, MaxInflation); err != nil {
		return err
	}
	if in.InflationPct > in.AnnualReturnPct {
		return invalid("inflation %v%% exceeds expected return %v%%", in.InflationPct, in.AnnualReturnPct)
	}
	return nil
}

// EffectiveReturnPct is the expected return, net of inflation when requested.
func (in GoalInput) EffectiveReturnPct() float64 {
	if !in.InflationAdjusted {
		return in.AnnualReturnPct
	}
	return ((1+in.AnnualReturnPct/100)/(1+in.InflationPct/100) - 1) * 100
}

// Goal runs GoalWithOptions with the solver defaults.
func Goal(in GoalInput) (GoalResult, error) {
	return GoalWithOptions(in, solver.Options{})
}

// GoalWithOptions computes the flat monthly contribution for the goal and the
// starting contribution of a step-up plan reaching the same target.
func GoalWithOptions(in GoalInput, opts solver.Options) (GoalResult, error) {
	if err := in.Validate(); err != nil {
		return GoalResult{}, err
	}

	months := in.Years * 12
	effective := in.EffectiveReturnPct()
	rate := monthlyRate(effective)

	required := solver.FlatContribution(in.Target, months, rate)
	totalInvestment := required * float64(months)
	totalReturns := in.Target - totalInvestment

	res, err := solver.SolveWithOptions(solver.Input{
		TargetValue:    in.Target,
		HorizonPeriods: months,
		PeriodicRate:   rate,
		StepUpPerYear:  in.StepUpPct / 100,
		PeriodsPerYear: 12,
	}, opts)
	if err != nil {
		if errors.Is(err, solver.ErrInvalidInput) {
			return GoalResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return GoalResult{}, fmt.Errorf("step-up plan: %w", err)
	}

	return GoalResult{
		EffectiveReturnPct: effective,
		RequiredMonthly:    Round(required),
		TotalInvestment:    Round(totalInvestment),
		TotalReturns:       Round(totalReturns),
		ReturnsPercent:     percentOf(totalReturns, totalInvestment),
		StepUpPct:          in.StepUpPct,
		StepUpMonthly:      Round(res.StartingContribution),
		StepUpAchieved:     Round(res.AchievedValue),
		StepUpIterations:   res.Iterations,
		SavingsWithStepUp:  Round(required - res.StartingContribution),
		DailyAmount:        Round(required / 30),
		WeeklyAmount:       Round(required / 4),
	}, nil
}

// Preset is a named goal amount.
type Preset struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// GoalPresets are the quick goals offered by the planner.
var GoalPresets = []Preset{
	{Name: "Emergency Fund", Amount: 500_000},
	{Name: "Car", Amount: 1_000_000},
	{Name: "Home Down Payment", Amount: 3_000_000},
	{Name: "Child Education", Amount: 5_000_000},
	{Name: "Retirement", Amount: 10_000_000},
	{Name: "Financial Freedom", Amount: 50_000_000},
}

// LookupPreset finds a preset by name, ignoring case. Dashes and underscores
// match spaces, so "home-down-payment" works on the command line.
func LookupPreset(name string) (Preset, bool) {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(name))
	for _, p := range GoalPresets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
