package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	lumpSumHorizon       horizonFlags
	flagLumpSumPrincipal float64
)

var lumpSumCmd = &cobra.Command{
	Use:   "lumpsum",
	Short: "Future value of a one-time investment",
	RunE:  runLumpSum,
}

func init() {
	lumpSumHorizon.register(lumpSumCmd, "Expected annual return in percent")
	lumpSumCmd.Flags().Float64VarP(&flagLumpSumPrincipal, "principal", "p", 0, "Amount invested today")
	_ = lumpSumCmd.MarkFlagRequired("principal")
	rootCmd.AddCommand(lumpSumCmd)
}

func runLumpSum(c *cobra.Command, _ []string) error {
	lumpSumHorizon.resolve(c)

	in := calc.LumpSumInput{
		Principal:       flagLumpSumPrincipal,
		Years:           lumpSumHorizon.years,
		AnnualReturnPct: lumpSumHorizon.returnPct,
	}
	res, err := calc.LumpSum(in)
	if err != nil {
		return friendlyError(err)
	}
	recordCalculation(model.KindLumpSum, in, res)

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LUMP SUM  %s for %s", cli.FormatCompact(in.Principal), cli.FormatYears(in.Years))))
	fmt.Println()

	returns, _ := res.TotalReturns.Float64()
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Principal", Value: cli.FormatMoney(calc.Round(in.Principal))},
		{Label: "Future value", Value: cli.FormatMoney(res.FutureValue)},
		{Label: "Returns", Value: cli.RenderGain(fmt.Sprintf("%s (%s)",
			cli.FormatSignedMoney(res.TotalReturns), cli.FormatSignedPercent(res.ReturnPercent)), returns)},
	}))

	fv, _ := res.FutureValue.Float64()
	fmt.Println()
	fmt.Print(cli.RenderSplitBar(in.Principal, fv, 40))
	return nil
}
