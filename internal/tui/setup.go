package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues backs the fields of the setup form. Numbers are kept as text
// so the form can validate them as they are typed.
type SetupValues struct {
	Currency     string
	Years        string
	ReturnPct    string
	InflationPct string
	StepUpPct    string
	Theme        string
	RedisAddr    string
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return SetupValues{
		Currency:     cfg.General.CurrencySymbol,
		Years:        strconv.Itoa(cfg.Defaults.Years),
		ReturnPct:    f(cfg.Defaults.ExpectedReturnPct),
		InflationPct: f(cfg.Defaults.InflationPct),
		StepUpPct:    f(cfg.Defaults.StepUpPct),
		Theme:        cfg.Appearance.Theme,
		RedisAddr:    cfg.Cache.RedisAddr,
	}
}

// Apply copies validated values into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	if err := validateYears(v.Years); err != nil {
		return fmt.Errorf("years: %w", err)
	}
	years, _ := strconv.Atoi(strings.TrimSpace(v.Years))
	ret, err := parsePct(v.ReturnPct, calc.MaxReturnPct)
	if err != nil {
		return fmt.Errorf("expected return: %w", err)
	}
	infl, err := parsePct(v.InflationPct, calc.MaxInflation)
	if err != nil {
		return fmt.Errorf("inflation: %w", err)
	}
	step, err := parsePct(v.StepUpPct, calc.MaxStepUpPct)
	if err != nil {
		return fmt.Errorf("step-up: %w", err)
	}
	if c := strings.TrimSpace(v.Currency); c != "" {
		cfg.General.CurrencySymbol = c
	}
	cfg.Defaults.Years = years
	cfg.Defaults.ExpectedReturnPct = ret
	cfg.Defaults.InflationPct = infl
	cfg.Defaults.StepUpPct = step
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	cfg.Cache.RedisAddr = strings.TrimSpace(v.RedisAddr)
	return nil
}

func parsePct(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("enter a number")
	}
	if f < 0 || f > limit {
		return 0, fmt.Errorf("must be between 0 and %v", limit)
	}
	return f, nil
}

func validateYears(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter whole years")
	}
	if n < 1 || n > calc.MaxYears {
		return fmt.Errorf("must be between 1 and %d", calc.MaxYears)
	}
	return nil
}

func pctValidator(limit float64) func(string) error {
	return func(s string) error {
		_, err := parsePct(s, limit)
		return err
	}
}

// NewSetupForm builds the first-run and `finplan setup` wizard.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to finplan").
				Description("These defaults fill in any calculator flag you leave out."),
			huh.NewInput().
				Title("Default horizon (years)").
				Value(&v.Years).
				Validate(validateYears),
			huh.NewInput().
				Title("Expected annual return (%)").
				Value(&v.ReturnPct).
				Validate(pctValidator(calc.MaxReturnPct)),
			huh.NewInput().
				Title("Inflation (%)").
				Value(&v.InflationPct).
				Validate(pctValidator(calc.MaxInflation)),
			huh.NewInput().
				Title("Yearly step-up (%)").
				Value(&v.StepUpPct).
				Validate(pctValidator(calc.MaxStepUpPct)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Currency symbol").
				Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewInput().
				Title("Redis address for the daemon cache").
				Description("Leave blank to cache in memory.").
				Placeholder("127.0.0.1:6379").
				Value(&v.RedisAddr),
		),
	).WithTheme(huh.ThemeCharm())
}
