package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	compareHorizon     horizonFlags
	flagCompareMonthly float64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "SIP versus investing the same total as a lump sum today",
	RunE:  runCompare,
}

func init() {
	compareHorizon.register(compareCmd, "Expected annual return in percent")
	compareCmd.Flags().Float64VarP(&flagCompareMonthly, "monthly", "m", 0, "Monthly SIP amount")
	_ = compareCmd.MarkFlagRequired("monthly")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(c *cobra.Command, _ []string) error {
	compareHorizon.resolve(c)

	in := calc.CompareInput{
		Monthly:         flagCompareMonthly,
		Years:           compareHorizon.years,
		AnnualReturnPct: compareHorizon.returnPct,
	}
	res, err := calc.Compare(in)
	if err != nil {
		return friendlyError(err)
	}
	recordCalculation(model.KindCompare, in, res)

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SIP vs LUMP SUM  %s", cli.FormatYears(in.Years))))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "SIP", "Lump sum"},
		Rows: [][]string{
			{"Invested", cli.FormatMoney(res.SIP.Invested), cli.FormatMoney(res.LumpSum.Invested)},
			{"Future value", cli.FormatMoney(res.SIP.FutureValue), cli.FormatMoney(res.LumpSum.FutureValue)},
			{"Returns", cli.FormatMoney(res.SIP.Returns), cli.FormatMoney(res.LumpSum.Returns)},
			{"Return %", cli.FormatPercent(res.SIP.ReturnPercent), cli.FormatPercent(res.LumpSum.ReturnPercent)},
		},
	}))
	fmt.Println()

	winner := "SIP"
	if res.Winner == calc.WinnerLumpSum {
		winner = "Lump sum"
	}
	fmt.Printf("  %s ends ahead by %s\n", winner, cli.FormatMoney(res.Difference))
	note("A lump sum has the whole amount invested from day one; a SIP averages in over time.")
	return nil
}
