package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	stepUpHorizon     horizonFlags
	flagStepUpMonthly float64
	flagStepUpPct     float64
)

var stepUpCmd = &cobra.Command{
	Use:   "stepup",
	Short: "Project a SIP whose monthly amount rises every year",
	RunE:  runStepUp,
}

func init() {
	stepUpHorizon.register(stepUpCmd, "Expected annual return in percent")
	stepUpCmd.Flags().Float64VarP(&flagStepUpMonthly, "monthly", "m", 0, "Starting monthly investment")
	stepUpCmd.Flags().Float64Var(&flagStepUpPct, "step-up", 0, "Annual step-up in percent (default from config)")
	_ = stepUpCmd.MarkFlagRequired("monthly")
	rootCmd.AddCommand(stepUpCmd)
}

func runStepUp(c *cobra.Command, _ []string) error {
	stepUpHorizon.resolve(c)
	floatDefault(c, "step-up", &flagStepUpPct, cfg.Defaults.StepUpPct)

	in := calc.StepUpSIPInput{
		Monthly:         flagStepUpMonthly,
		Years:           stepUpHorizon.years,
		AnnualReturnPct: stepUpHorizon.returnPct,
		StepUpPct:       flagStepUpPct,
	}
	res, err := calc.StepUpSIP(in)
	if err != nil {
		return friendlyError(err)
	}
	recordCalculation(model.KindStepUp, in, res)

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("STEP-UP SIP  +%s/yr for %s",
		cli.FormatPercent(in.StepUpPct), cli.FormatYears(in.Years))))
	fmt.Println()

	returns, _ := res.TotalReturns.Float64()
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "First month", Value: cli.FormatMoney(calc.Round(in.Monthly))},
		{Label: "Final month", Value: cli.FormatMoney(res.FinalMonthly)},
		{Label: "Invested", Value: cli.FormatMoney(res.TotalInvested)},
		{Label: "Future value", Value: cli.FormatMoney(res.FutureValue)},
		{Label: "Returns", Value: cli.RenderGain(fmt.Sprintf("%s (%s)",
			cli.FormatSignedMoney(res.TotalReturns), cli.FormatSignedPercent(res.ReturnPercent)), returns)},
	}))

	invested, _ := res.TotalInvested.Float64()
	fv, _ := res.FutureValue.Float64()
	fmt.Println()
	fmt.Print(cli.RenderSplitBar(invested, fv, 40))
	return nil
}
