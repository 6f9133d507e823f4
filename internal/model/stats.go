package model

import "github.com/shopspring/decimal"

// PortfolioStats holds the quick stats shown above the holdings list.
type PortfolioStats struct {
	Count          int
	UniqueTypes    int
	TotalInvested  decimal.Decimal
	TotalCurrent   decimal.Decimal
	TotalReturns   decimal.Decimal
	ReturnsPercent float64

	Best               Investment
	BestReturnsPercent float64

	Worst               Investment
	WorstReturnsPercent float64
}

// AllocationSlice is one investment type's share of the portfolio.
type AllocationSlice struct {
	Type         InvestmentType
	Label        string
	Value        decimal.Decimal
	SharePercent float64
}
