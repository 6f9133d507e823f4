package calc

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finplan/internal/solver"
)

// SIPInput is a fixed monthly investment.
type SIPInput struct {
	Monthly         float64 `json:"monthly"`
	Years           int     `json:"years"`
	AnnualReturnPct float64 `json:"annual_return_pct"`
	InflationPct    float64 `json:"inflation_pct"`
}

// SIPResult holds nominal and inflation-adjusted outcomes.
type SIPResult struct {
	FutureValue       decimal.Decimal `json:"future_value"`
	TotalInvested     decimal.Decimal `json:"total_invested"`
	TotalReturns      decimal.Decimal `json:"total_returns"`
	ReturnPercent     float64         `json:"return_percent"`
	RealFutureValue   decimal.Decimal `json:"real_future_value"`
	RealTotalReturns  decimal.Decimal `json:"real_total_returns"`
	RealReturnPercent float64         `json:"real_return_percent"`
}

// Validate checks the input ranges.
func (in SIPInput) Validate() error {
	if err := checkAmount("monthly amount", in.Monthly); err != nil {
		return err
	}
	if err := checkYears(in.Years); err != nil {
		return err
	}
	if err := checkPct("expected return", in.AnnualReturnPct, MaxReturnPct); err != nil {
		return err
	}
	return checkPct("inflation", in.InflationPct, MaxInflation)
}

// sipFutureValue is the value of n start-of-month payments of p at monthly rate r.
func sipFutureValue(p float64, n int, r float64) float64 {
	if r == 0 {
		return p * float64(n)
	}
	return p * ((math.Pow(1+r, float64(n)) - 1) / r) * (1 + r)
}

// SIP computes the future value of a monthly SIP.
func SIP(in SIPInput) (SIPResult, error) {
	if err := in.Validate(); err != nil {
		return SIPResult{}, err
	}

	months := in.Years * 12
	invested := in.Monthly * float64(months)
	fv := sipFutureValue(in.Monthly, months, monthlyRate(in.AnnualReturnPct))
	returns := fv - invested

	inflationFactor := math.Pow(1+in.InflationPct/100, float64(in.Years))
	realFV := fv / inflationFactor
	realReturns := realFV - invested

	return SIPResult{
		FutureValue:       Round(fv),
		TotalInvested:     Round(invested),
		TotalReturns:      Round(returns),
		ReturnPercent:     percentOf(returns, invested),
		RealFutureValue:   Round(realFV),
		RealTotalReturns:  Round(realReturns),
		RealReturnPercent: percentOf(realReturns, invested),
	}, nil
}

// StepUpSIPInput is a monthly SIP whose amount rises once a year.
type StepUpSIPInput struct {
	Monthly         float64 `json:"monthly"`
	Years           int     `json:"years"`
	AnnualReturnPct float64 `json:"annual_return_pct"`
	StepUpPct       float64 `json:"step_up_pct"`
}

// StepUpSIPResult is the projection of a step-up SIP.
type StepUpSIPResult struct {
	FutureValue   decimal.Decimal `json:"future_value"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalReturns  decimal.Decimal `json:"total_returns"`
	ReturnPercent float64         `json:"return_percent"`
	FinalMonthly  decimal.Decimal `json:"final_monthly"`
}

// Validate checks the input ranges.
func (in StepUpSIPInput) Validate() error {
	if err := checkAmount("monthly amount", in.Monthly); err != nil {
		return err
	}
	if err := checkYears(in.Years); err != nil {
		return err
	}
	if err := checkPct("expected return", in.AnnualReturnPct, MaxReturnPct); err != nil {
		return err
	}
	return checkPct("step-up", in.StepUpPct, MaxStepUpPct)
}

// StepUpSIP projects a step-up SIP forward with the same schedule the goal
// solver searches over.
func StepUpSIP(in StepUpSIPInput) (StepUpSIPResult, error) {
	if err := in.Validate(); err != nil {
		return StepUpSIPResult{}, err
	}

	step := 1 + in.StepUpPct/100
	sched := solver.Input{
		TargetValue:    1,
		HorizonPeriods: in.Years * 12,
		PeriodicRate:   monthlyRate(in.AnnualReturnPct),
		StepUpPerYear:  in.StepUpPct / 100,
		PeriodsPerYear: 12,
	}
	fv := solver.Accumulate(in.Monthly, sched)

	invested := 0.0
	monthly := in.Monthly
	for year := 0; year < in.Years; year++ {
		if year > 0 {
			monthly *= step
		}
		invested += monthly * 12
	}
	returns := fv - invested

	return StepUpSIPResult{
		FutureValue:   Round(fv),
		TotalInvested: Round(invested),
		TotalReturns:  Round(returns),
		ReturnPercent: percentOf(returns, invested),
		FinalMonthly:  Round(monthly),
	}, nil
}

// YearPoint is a step-up SIP at the end of one year.
type YearPoint struct {
	Year     int             `json:"year"`
	Monthly  decimal.Decimal `json:"monthly"`
	Invested decimal.Decimal `json:"invested"`
	Value    decimal.Decimal `json:"value"`
}

// StepUpSchedule walks a step-up SIP month by month and reports each year's
// end. The last point matches StepUpSIP.
func StepUpSchedule(in StepUpSIPInput) ([]YearPoint, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	growth := 1 + monthlyRate(in.AnnualReturnPct)
	step := 1 + in.StepUpPct/100

	points := make([]YearPoint, 0, in.Years)
	monthly := in.Monthly
	balance, invested := 0.0, 0.0
	for year := 1; year <= in.Years; year++ {
		if year > 1 {
			monthly *= step
		}
		for m := 0; m < 12; m++ {
			balance = (balance + monthly) * growth
			invested += monthly
		}
		points = append(points, YearPoint{
			Year:     year,
			Monthly:  Round(monthly),
			Invested: Round(invested),
			Value:    Round(balance),
		})
	}
	return points, nil
}
