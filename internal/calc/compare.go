package calc

import (
	"math"

	"github.com/shopspring/decimal"
)

// CompareInput describes a SIP and the lump sum of the same total.
type CompareInput struct {
	Monthly         float64 `json:"monthly"`
	Years           int     `json:"years"`
	AnnualReturnPct float64 `json:"annual_return_pct"`
}

// Outcome is one side of a comparison.
type Outcome struct {
	Invested      decimal.Decimal `json:"invested"`
	FutureValue   decimal.Decimal `json:"future_value"`
	Returns       decimal.Decimal `json:"returns"`
	ReturnPercent float64         `json:"return_percent"`
}

// Winner names the better strategy.
type Winner string

const (
	WinnerSIP     Winner = "sip"
	WinnerLumpSum Winner = "lumpsum"
)

// CompareResult contrasts SIP with lump sum.
type CompareResult struct {
	SIP        Outcome         `json:"sip"`
	LumpSum    Outcome         `json:"lump_sum"`
	Difference decimal.Decimal `json:"difference"`
	Winner     Winner          `json:"winner"`
}

// Validate checks the input ranges.
func (in CompareInput) Validate() error {
	if err := checkAmount("monthly amount", in.Monthly); err != nil {
		return err
	}
	if err := checkYears(in.Years); err != nil {
		return err
	}
	return checkPct("expected return", in.AnnualReturnPct, MaxReturnPct)
}

// Compare invests the SIP's total up front as a lump sum and compares the
// two at the end of the horizon. Ties go to SIP.
func Compare(in CompareInput) (CompareResult, error) {
	if err := in.Validate(); err != nil {
		return CompareResult{}, err
	}

	months := in.Years * 12
	invested := in.Monthly * float64(months)

	sipFV := sipFutureValue(in.Monthly, months, monthlyRate(in.AnnualReturnPct))
	lumpFV := invested * math.Pow(1+in.AnnualReturnPct/100, float64(in.Years))

	sipReturns := sipFV - invested
	lumpReturns := lumpFV - invested

	diff := lumpFV - sipFV
	winner := WinnerSIP
	if diff > 0 {
		winner = WinnerLumpSum
	}

	return CompareResult{
		SIP: Outcome{
			Invested:      Round(invested),
			FutureValue:   Round(sipFV),
			Returns:       Round(sipReturns),
			ReturnPercent: percentOf(sipReturns, invested),
		},
		LumpSum: Outcome{
			Invested:      Round(invested),
			FutureValue:   Round(lumpFV),
			Returns:       Round(lumpReturns),
			ReturnPercent: percentOf(lumpReturns, invested),
		},
		Difference: Round(diff).Abs(),
		Winner:     winner,
	}, nil
}
