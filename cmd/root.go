// Package cmd implements the finplan CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/logging"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagQuiet     bool
	flagNoHistory bool
	flagDB        string
	flagLogLevel  string
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "finplan",
	Short: "Goal-based investment planner",
	Long: "Plan savings goals and project SIP, step-up SIP, lump sum, and recurring\n" +
		"deposit returns. Track holdings and keep a history of calculations.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress notes and warnings")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Don't record calculations in the local history")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// setup loads config and builds the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	logger = logging.New(os.Stderr, logLevel())

	if cfg.General.CurrencySymbol != "" {
		cli.Currency = cfg.General.CurrencySymbol
	}
	return nil
}

// logLevel prefers --log-level over the config file.
func logLevel() string {
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return cfg.Log.Level
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.GetDBPath(cfg)
}

func openStore() (*store.Store, error) {
	s, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}

// recordCalculation saves a calculator run to history. Failures are logged,
// not returned; history is best effort.
func recordCalculation(kind model.CalculationKind, input, result any) {
	if flagNoHistory {
		return
	}
	s, err := openStore()
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		return
	}
	defer func() { _ = s.Close() }()

	if _, err := s.SaveCalculation(kind, input, result); err != nil {
		logger.Warn("recording calculation failed", "kind", kind, "err", err)
		return
	}
	logger.Debug("calculation recorded", "kind", kind, "db", dbPath())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func note(format string, args ...any) {
	if flagQuiet || flagJSON {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
