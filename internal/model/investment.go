// Package model defines domain types for finplan holdings and calculations.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentType classifies a holding.
type InvestmentType string

const (
	TypeSIP        InvestmentType = "sip"
	TypeETF        InvestmentType = "etf"
	TypeStock      InvestmentType = "stock"
	TypeMutualFund InvestmentType = "mutual_fund"
	TypeOther      InvestmentType = "other"
)

// InvestmentTypes lists every known type in display order.
var InvestmentTypes = []InvestmentType{TypeSIP, TypeETF, TypeStock, TypeMutualFund, TypeOther}

var typeLabels = map[InvestmentType]string{
	TypeSIP:        "SIP",
	TypeETF:        "ETF",
	TypeStock:      "Stocks",
	TypeMutualFund: "Mutual Funds",
	TypeOther:      "Other",
}

// Label returns the display name, falling back to the raw value.
func (t InvestmentType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseInvestmentType normalizes user input such as "Mutual-Fund" or "stocks".
func ParseInvestmentType(s string) (InvestmentType, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "stocks":
		norm = string(TypeStock)
	case "mf":
		norm = string(TypeMutualFund)
	}
	for _, t := range InvestmentTypes {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown investment type %q", s)
}

// Investment is one holding in the local portfolio.
type Investment struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Type           InvestmentType  `json:"type"`
	InvestedAmount decimal.Decimal `json:"invested_amount"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewInvestment assigns an ID and creation time.
func NewInvestment(name string, typ InvestmentType, invested, current decimal.Decimal) Investment {
	return Investment{
		ID:             uuid.New(),
		Name:           name,
		Type:           typ,
		InvestedAmount: invested,
		CurrentValue:   current,
		CreatedAt:      time.Now().UTC(),
	}
}

// Returns is current value minus invested amount.
func (i Investment) Returns() decimal.Decimal {
	return i.CurrentValue.Sub(i.InvestedAmount)
}

// ReturnsPercent is the gain relative to the invested amount, 0 when nothing
// was invested.
func (i Investment) ReturnsPercent() float64 {
	if !i.InvestedAmount.IsPositive() {
		return 0
	}
	pct, _ := i.Returns().Div(i.InvestedAmount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
