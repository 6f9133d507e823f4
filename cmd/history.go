package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistoryKind  string
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recent calculations",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Number of calculations to show")
	historyCmd.Flags().StringVarP(&flagHistoryKind, "kind", "k", "", "Only show one calculator (goal, sip, stepup, lumpsum, rd, compare)")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all recorded calculations")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if flagHistoryClear {
		n, err := s.ClearCalculations()
		if err != nil {
			return err
		}
		fmt.Printf("  Cleared %d calculations\n", n)
		return nil
	}

	calcs, err := s.RecentCalculations(model.CalculationKind(flagHistoryKind), flagHistoryLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		if calcs == nil {
			calcs = []model.Calculation{}
		}
		return printJSON(calcs)
	}
	if len(calcs) == 0 {
		fmt.Println("\n  No calculations recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(calcs))
	for _, c := range calcs {
		rows = append(rows, []string{
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(c.Kind),
			compactJSON(c.Input, 60),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("History (showing %d)", len(calcs)),
		Headers: []string{"When", "Calculator", "Input"},
		Rows:    rows,
	}))
	return nil
}

func compactJSON(raw json.RawMessage, limit int) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	s := []rune(buf.String())
	if len(s) > limit {
		return string(s[:limit-1]) + "…"
	}
	return string(s)
}
