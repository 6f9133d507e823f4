package cmd

import (
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagRDDeposit     float64
	flagRDRate        float64
	flagRDYears       int
	flagRDCompounding string
)

var rdCmd = &cobra.Command{
	Use:   "rd",
	Short: "Maturity value of a recurring deposit",
	RunE:  runRD,
}

func init() {
	rdCmd.Flags().Float64VarP(&flagRDDeposit, "monthly", "m", 0, "Monthly deposit")
	rdCmd.Flags().Float64VarP(&flagRDRate, "rate", "r", 7, "Annual interest rate in percent")
	rdCmd.Flags().IntVarP(&flagRDYears, "years", "y", 5, "Tenure in years")
	rdCmd.Flags().StringVar(&flagRDCompounding, "compounding", "quarterly", "Compounding: monthly or quarterly")
	_ = rdCmd.MarkFlagRequired("monthly")
	rootCmd.AddCommand(rdCmd)
}

func runRD(_ *cobra.Command, _ []string) error {
	comp, err := calc.ParseCompounding(flagRDCompounding)
	if err != nil {
		return err
	}

	in := calc.RDInput{
		MonthlyDeposit: flagRDDeposit,
		AnnualRatePct:  flagRDRate,
		Years:          flagRDYears,
		Compounding:    comp,
	}
	res, err := calc.RD(in)
	if err != nil {
		return friendlyError(err)
	}
	recordCalculation(model.KindRD, in, res)

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RECURRING DEPOSIT  %s/month at %s", cli.FormatCompact(in.MonthlyDeposit), cli.FormatPercent(in.AnnualRatePct))))
	fmt.Println()

	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Tenure", Value: fmt.Sprintf("%s, compounded %s", cli.FormatYears(in.Years), comp)},
		{Label: "Total deposit", Value: cli.FormatMoney(res.TotalDeposit)},
		{Label: "Interest earned", Value: cli.FormatMoney(res.TotalInterest)},
		{Label: "Maturity amount", Value: cli.FormatMoney(res.MaturityAmount)},
		{Label: "Effective return", Value: cli.FormatPercent(res.EffectiveReturn)},
	}))
	return nil
}
