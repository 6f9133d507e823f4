package tui

import (
	"testing"

	"github.com/theirongolddev/finplan/internal/config"
)

func TestSetupValues_Apply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := SetupValuesFrom(cfg)
	v.Years = "25"
	v.ReturnPct = "11.5"
	v.Currency = "$"
	v.Theme = "tokyo-night"

	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Defaults.Years != 25 || cfg.Defaults.ExpectedReturnPct != 11.5 {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.General.CurrencySymbol != "$" || cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("general = %+v appearance = %+v", cfg.General, cfg.Appearance)
	}
}

func TestSetupValues_ApplyRejects(t *testing.T) {
	tests := []struct {
		name  string
		patch func(*SetupValues)
	}{
		{"years zero", func(v *SetupValues) { v.Years = "0" }},
		{"years text", func(v *SetupValues) { v.Years = "ten" }},
		{"return too high", func(v *SetupValues) { v.ReturnPct = "45" }},
		{"negative inflation", func(v *SetupValues) { v.InflationPct = "-1" }},
		{"step-up too high", func(v *SetupValues) { v.StepUpPct = "80" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			v := SetupValuesFrom(cfg)
			tt.patch(&v)
			if err := v.Apply(&cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
