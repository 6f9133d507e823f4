package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/solver"

	"github.com/spf13/cobra"
)

// horizonFlags are the years/return flags shared by every calculator. Unset
// flags fall back to the [defaults] section of the config.
type horizonFlags struct {
	years     int
	returnPct float64
}

func (h *horizonFlags) register(c *cobra.Command, returnUsage string) {
	c.Flags().IntVarP(&h.years, "years", "y", 0, "Investment horizon in years (default from config)")
	c.Flags().Float64VarP(&h.returnPct, "return", "r", 0, returnUsage+" (default from config)")
}

func (h *horizonFlags) resolve(c *cobra.Command) {
	if !c.Flags().Changed("years") {
		h.years = cfg.Defaults.Years
	}
	if !c.Flags().Changed("return") {
		h.returnPct = cfg.Defaults.ExpectedReturnPct
	}
}

func floatDefault(c *cobra.Command, name string, v *float64, def float64) {
	if !c.Flags().Changed(name) {
		*v = def
	}
}

// friendlyError rewords calculator errors for the terminal while keeping the
// original chain for errors.Is.
func friendlyError(err error) error {
	switch {
	case errors.Is(err, solver.ErrOutOfRange):
		return fmt.Errorf("no step-up plan found within the search budget; try a smaller step-up or a longer horizon: %w", err)
	case errors.Is(err, calc.ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("calculation failed: %w", err)
	}
}
