package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// LumpSumInput is a one-time investment compounded annually.
type LumpSumInput struct {
	Principal       float64 `json:"principal"`
	Years           int     `json:"years"`
	AnnualReturnPct float64 `json:"annual_return_pct"`
}

// LumpSumResult is the value of a lump sum at the end of the horizon.
type LumpSumResult struct {
	FutureValue   decimal.Decimal `json:"future_value"`
	TotalReturns  decimal.Decimal `json:"total_returns"`
	ReturnPercent float64         `json:"return_percent"`
}

// Validate checks the input ranges.
func (in LumpSumInput) Validate() error {
	if err := checkAmount("principal", in.Principal); err != nil {
		return err
	}
	if err := checkYears(in.Years); err != nil {
		return err
	}
	return checkPct("expected return", in.AnnualReturnPct, MaxReturnPct)
}

// LumpSum computes P(1+r)^years.
func LumpSum(in LumpSumInput) (LumpSumResult, error) {
	if err := in.Validate(); err != nil {
		return LumpSumResult{}, err
	}
	fv := in.Principal * math.Pow(1+in.AnnualReturnPct/100, float64(in.Years))
	returns := fv - in.Principal
	return LumpSumResult{
		FutureValue:   Round(fv),
		TotalReturns:  Round(returns),
		ReturnPercent: percentOf(returns, in.Principal),
	}, nil
}

// Compounding is how often a recurring deposit earns interest.
type Compounding string

const (
	Monthly   Compounding = "monthly"
	Quarterly Compounding = "quarterly"
)

// ParseCompounding accepts "monthly" or "quarterly"; empty means quarterly.
func ParseCompounding(s string) (Compounding, error) {
	switch Compounding(strings.ToLower(strings.TrimSpace(s))) {
	case "", Quarterly:
		return Quarterly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("%w: unknown compounding %q", ErrInvalidInput, s)
}

// RDInput is a recurring deposit.
type RDInput struct {
	MonthlyDeposit float64     `json:"monthly_deposit"`
	AnnualRatePct  float64     `json:"annual_rate_pct"`
	Years          int         `json:"years"`
	Compounding    Compounding `json:"compounding"`
}

// RDResult is the maturity of a recurring deposit.
type RDResult struct {
	MaturityAmount  decimal.Decimal `json:"maturity_amount"`
	TotalDeposit    decimal.Decimal `json:"total_deposit"`
	TotalInterest   decimal.Decimal `json:"total_interest"`
	EffectiveReturn float64         `json:"effective_return"`
}

// Validate checks the input ranges.
func (in RDInput) Validate() error {
	if err := checkAmount("monthly deposit", in.MonthlyDeposit); err != nil {
		return err
	}
	if err := checkYears(in.Years); err != nil {
		return err
	}
	if err := checkPct("interest rate", in.AnnualRatePct, MaxReturnPct); err != nil {
		return err
	}
	_, err := ParseCompounding(string(in.Compounding))
	return err
}

// RD sums each deposit's growth. Deposit i of n earns interest for n-i+1
// months; quarterly compounding counts those months as fractional quarters.
func RD(in RDInput) (RDResult, error) {
	if err := in.Validate(); err != nil {
		return RDResult{}, err
	}
	comp, _ := ParseCompounding(string(in.Compounding))

	r := in.AnnualRatePct / 100
	months := in.Years * 12

	maturity := 0.0
	for i := 1; i <= months; i++ {
		remaining := float64(months - i + 1)
		if comp == Quarterly {
			maturity += in.MonthlyDeposit * math.Pow(1+r/4, remaining/3)
		} else {
			maturity += in.MonthlyDeposit * math.Pow(1+r/12, remaining)
		}
	}

	deposit := in.MonthlyDeposit * float64(months)
	interest := maturity - deposit

	return RDResult{
		MaturityAmount:  Round(maturity),
		TotalDeposit:    Round(deposit),
		TotalInterest:   Round(interest),
		EffectiveReturn: math.Round(percentOf(interest, deposit)*10) / 10,
	}, nil
}
