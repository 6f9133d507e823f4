package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	sipHorizon       horizonFlags
	flagSIPMonthly   float64
	flagSIPInflation float64
)

var sipCmd = &cobra.Command{
	Use:   "sip",
	Short: "Future value of a monthly SIP, nominal and inflation-adjusted",
	RunE:  runSIP,
}

func init() {
	sipHorizon.register(sipCmd, "Expected annual return in percent")
	sipCmd.Flags().Float64VarP(&flagSIPMonthly, "monthly", "m", 0, "Monthly investment")
	sipCmd.Flags().Float64Var(&flagSIPInflation, "inflation", 0, "Annual inflation in percent (default from config)")
	_ = sipCmd.MarkFlagRequired("monthly")
	rootCmd.AddCommand(sipCmd)
}

func runSIP(c *cobra.Command, _ []string) error {
	sipHorizon.resolve(c)
	floatDefault(c, "inflation", &flagSIPInflation, cfg.Defaults.InflationPct)

	in := calc.SIPInput{
		Monthly:         flagSIPMonthly,
		Years:           sipHorizon.years,
		AnnualReturnPct: sipHorizon.returnPct,
		InflationPct:    flagSIPInflation,
	}
	res, err := calc.SIP(in)
	if err != nil {
		return friendlyError(err)
	}
	recordCalculation(model.KindSIP, in, res)

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SIP  %s/month for %s", cli.FormatCompact(in.Monthly), cli.FormatYears(in.Years))))
	fmt.Println()

	returns, _ := res.TotalReturns.Float64()
	realReturns, _ := res.RealTotalReturns.Float64()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Nominal", fmt.Sprintf("Real (%s infl.)", cli.FormatPercent(in.InflationPct))},
		Rows: [][]string{
			{"Future value", cli.FormatMoney(res.FutureValue), cli.FormatMoney(res.RealFutureValue)},
			{"Invested", cli.FormatMoney(res.TotalInvested), cli.FormatMoney(res.TotalInvested)},
			{"Returns",
				cli.RenderGain(cli.FormatSignedMoney(res.TotalReturns), returns),
				cli.RenderGain(cli.FormatSignedMoney(res.RealTotalReturns), realReturns)},
			{"Return %", cli.FormatSignedPercent(res.ReturnPercent), cli.FormatSignedPercent(res.RealReturnPercent)},
		},
	}))

	invested, _ := res.TotalInvested.Float64()
	fv, _ := res.FutureValue.Float64()
	fmt.Println()
	fmt.Print(cli.RenderSplitBar(invested, fv, 40))
	return nil
}
