package cli

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatGrouped(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{100000, "1,00,000"},
		{1234567, "12,34,567"},
		{10000000, "1,00,00,000"},
		{-250000, "-2,50,000"},
	}
	for _, tt := range tests {
		if got := FormatGrouped(tt.in); got != tt.want {
			t.Errorf("FormatGrouped(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12_500_000, "₹1.25 Cr"},
		{350_000, "₹3.50 L"},
		{4_200, "₹4.2K"},
		{999, "₹999"},
		{-150_000, "-₹1.50 L"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("1161693.6")); got != "₹11,61,694" {
		t.Fatalf("FormatMoney = %q", got)
	}
	if got := FormatSignedMoney(decimal.NewFromInt(-5000)); got != "-₹5,000" {
		t.Fatalf("FormatSignedMoney = %q", got)
	}
	if got := FormatSignedMoney(decimal.NewFromInt(5000)); got != "+₹5,000" {
		t.Fatalf("FormatSignedMoney = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(93.61); got != "93.6%" {
		t.Fatalf("FormatPercent = %q", got)
	}
	if got := FormatSignedPercent(-4); got != "-4.0%" {
		t.Fatalf("FormatSignedPercent = %q", got)
	}
	if got := FormatSignedPercent(12.25); got != "+12.2%" && got != "+12.3%" {
		t.Fatalf("FormatSignedPercent = %q", got)
	}
}

func TestFormatYears(t *testing.T) {
	if FormatYears(1) != "1 year" || FormatYears(15) != "15 years" {
		t.Fatal("FormatYears pluralization")
	}
}
