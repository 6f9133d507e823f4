package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	goalHorizon          horizonFlags
	flagGoalTarget       float64
	flagGoalPreset       string
	flagGoalInflationAdj bool
	flagGoalInflation    float64
	flagGoalStepUp       float64
	flagGoalListPresets  bool
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Monthly investment needed to reach a target, flat and step-up",
	Example: "  finplan goal --target 10000000 --years 15\n" +
		"  finplan goal --preset retirement --inflation-adjusted",
	RunE: runGoal,
}

func init() {
	goalHorizon.register(goalCmd, "Expected annual return in percent")
	goalCmd.Flags().Float64VarP(&flagGoalTarget, "target", "t", 0, "Target amount")
	goalCmd.Flags().StringVar(&flagGoalPreset, "preset", "", "Use a preset goal amount (see --presets)")
	goalCmd.Flags().BoolVar(&flagGoalInflationAdj, "inflation-adjusted", false, "Discount the return by inflation")
	goalCmd.Flags().Float64Var(&flagGoalInflation, "inflation", 0, "Annual inflation in percent (default from config)")
	goalCmd.Flags().Float64Var(&flagGoalStepUp, "step-up", 0, "Annual step-up in percent (default from config)")
	goalCmd.Flags().BoolVar(&flagGoalListPresets, "presets", false, "List preset goals and exit")
	rootCmd.AddCommand(goalCmd)
}

func runGoal(c *cobra.Command, _ []string) error {
	if flagGoalListPresets {
		return printPresets()
	}

	goalHorizon.resolve(c)
	floatDefault(c, "inflation", &flagGoalInflation, cfg.Defaults.InflationPct)
	floatDefault(c, "step-up", &flagGoalStepUp, cfg.Defaults.StepUpPct)

	target := flagGoalTarget
	if flagGoalPreset != "" {
		p, ok := calc.LookupPreset(flagGoalPreset)
		if !ok {
			return fmt.Errorf("%w: unknown preset %q", calc.ErrInvalidInput, flagGoalPreset)
		}
		if !c.Flags().Changed("target") {
			target = p.Amount
		}
	}
	if target == 0 {
		return errors.New("a --target or --preset is required")
	}

	in := calc.GoalInput{
		Target:            target,
		Years:             goalHorizon.years,
		AnnualReturnPct:   goalHorizon.returnPct,
		InflationAdjusted: flagGoalInflationAdj,
		InflationPct:      flagGoalInflation,
		StepUpPct:         flagGoalStepUp,
	}
	res, err := calc.GoalWithOptions(in, cfg.SolverOptions())
	if err != nil {
		return friendlyError(err)
	}
	logger.Debug("step-up solved", "iterations", res.StepUpIterations, "achieved", res.StepUpAchieved)
	recordCalculation(model.KindGoal, in, res)

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("GOAL  %s in %s", cli.FormatCompact(target), cli.FormatYears(in.Years))))
	fmt.Println()

	returnLabel := cli.FormatPercent(res.EffectiveReturnPct)
	if in.InflationAdjusted {
		returnLabel += fmt.Sprintf("  (%s nominal, %s inflation)",
			cli.FormatPercent(in.AnnualReturnPct), cli.FormatPercent(in.InflationPct))
	}

	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Expected return", Value: returnLabel},
		{Label: "Required monthly", Value: cli.FormatMoney(res.RequiredMonthly)},
		{Label: "That is about", Value: fmt.Sprintf("%s/day, %s/week",
			cli.FormatMoney(res.DailyAmount), cli.FormatMoney(res.WeeklyAmount))},
		{Label: "Total investment", Value: cli.FormatMoney(res.TotalInvestment)},
		{Label: "Total returns", Value: fmt.Sprintf("%s (%s)",
			cli.FormatMoney(res.TotalReturns), cli.FormatPercent(res.ReturnsPercent))},
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Plan", "Start monthly"},
		Rows: [][]string{
			{"Flat SIP", cli.FormatMoney(res.RequiredMonthly)},
			{fmt.Sprintf("Step-up (+%s/yr)", cli.FormatPercent(res.StepUpPct)), cli.FormatMoney(res.StepUpMonthly)},
			cli.SeparatorRow,
			{"Lower start with step-up", cli.FormatMoney(res.SavingsWithStepUp)},
		},
	}))

	invested, _ := res.TotalInvestment.Float64()
	fmt.Println()
	fmt.Print(cli.RenderSplitBar(invested, target, 40))
	return nil
}

func printPresets() error {
	if flagJSON {
		return printJSON(calc.GoalPresets)
	}
	rows := make([][]string, 0, len(calc.GoalPresets))
	for _, p := range calc.GoalPresets {
		rows = append(rows, []string{p.Name, cli.FormatCompact(p.Amount)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Preset goals",
		Headers: []string{"Goal", "Amount"},
		Rows:    rows,
	}))
	return nil
}
