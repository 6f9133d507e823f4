package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagJSON {
		return printJSON(cfg)
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency: %s\n", cfg.General.CurrencySymbol)
	fmt.Println()

	fmt.Println("  [Defaults]")
	fmt.Printf("    Years:           %d\n", cfg.Defaults.Years)
	fmt.Printf("    Expected return: %.2f%%\n", cfg.Defaults.ExpectedReturnPct)
	fmt.Printf("    Inflation:       %.2f%%\n", cfg.Defaults.InflationPct)
	fmt.Printf("    Step-up:         %.2f%%\n", cfg.Defaults.StepUpPct)
	fmt.Println()

	fmt.Println("  [Solver]")
	fmt.Printf("    Tolerance:      %g\n", cfg.Solver.Tolerance)
	fmt.Printf("    Max iterations: %d\n", cfg.Solver.MaxIterations)
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Database: %s\n", dbPath())
	fmt.Println()

	fmt.Println("  [Cache]")
	if addr := config.GetRedisAddr(cfg); addr != "" {
		fmt.Printf("    Backend: redis (%s)\n", addr)
	} else {
		fmt.Println("    Backend: memory")
	}
	fmt.Printf("    TTL:     %s\n", cfg.CacheTTL())
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:    %s\n", cfg.Daemon.Addr)
	if cfg.Daemon.RateLimit > 0 {
		fmt.Printf("    Rate limit: %d per %ds\n", cfg.Daemon.RateLimit, cfg.Daemon.RateWindowSec)
	} else {
		fmt.Println("    Rate limit: off")
	}
	fmt.Printf("    Events:     %d kept\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	fmt.Println("  Run `finplan setup` to reconfigure.")
	return nil
}
