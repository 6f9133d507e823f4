package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/finplan/internal/cli"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/portfolio"
	"github.com/theirongolddev/finplan/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagPortName     string
	flagPortAddType  string
	flagPortType     string
	flagPortInvested string
	flagPortCurrent  string
	flagPortFilter   string
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Aliases: []string{"pf"},
	Short:   "Track holdings and see allocation",
	RunE:    runPortfolioList,
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a holding",
	RunE:  runPortfolioAdd,
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List holdings, largest first",
	RunE:  runPortfolioList,
}

var portfolioUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Set a holding's current value",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolioUpdate,
}

var portfolioRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a holding by id or id prefix",
	Args:    cobra.ExactArgs(1),
	RunE:    runPortfolioRemove,
}

var portfolioStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Totals, best and worst performers, and allocation",
	RunE:  runPortfolioStats,
}

func init() {
	portfolioAddCmd.Flags().StringVar(&flagPortName, "name", "", "Holding name")
	portfolioAddCmd.Flags().StringVar(&flagPortAddType, "type", "sip", "Type: sip, etf, stock, mutual_fund, other")
	portfolioAddCmd.Flags().StringVar(&flagPortInvested, "invested", "", "Amount invested")
	portfolioAddCmd.Flags().StringVar(&flagPortCurrent, "current", "", "Current value (default: invested)")
	_ = portfolioAddCmd.MarkFlagRequired("name")
	_ = portfolioAddCmd.MarkFlagRequired("invested")

	portfolioUpdateCmd.Flags().StringVar(&flagPortCurrent, "current", "", "New current value")
	_ = portfolioUpdateCmd.MarkFlagRequired("current")

	for _, c := range []*cobra.Command{portfolioCmd, portfolioListCmd, portfolioStatsCmd} {
		c.Flags().StringVar(&flagPortType, "type", "", "Only show this type")
		c.Flags().StringVar(&flagPortFilter, "name", "", "Only show names containing this text")
	}

	portfolioCmd.AddCommand(portfolioAddCmd, portfolioListCmd, portfolioUpdateCmd, portfolioRemoveCmd, portfolioStatsCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return d, fmt.Errorf("%s: %q is not a number", name, s)
	}
	if d.IsNegative() {
		return d, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}

func runPortfolioAdd(_ *cobra.Command, _ []string) error {
	name := strings.TrimSpace(flagPortName)
	if name == "" {
		return errors.New("name must not be empty")
	}
	typ, err := model.ParseInvestmentType(flagPortAddType)
	if err != nil {
		return err
	}
	invested, err := parseAmount("invested", flagPortInvested)
	if err != nil {
		return err
	}
	current := invested
	if flagPortCurrent != "" {
		if current, err = parseAmount("current", flagPortCurrent); err != nil {
			return err
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	inv, err := s.AddInvestment(model.NewInvestment(name, typ, invested, current))
	if err != nil {
		return err
	}
	logger.Info("holding added", "id", inv.ID, "type", inv.Type)

	if flagJSON {
		return printJSON(inv)
	}
	fmt.Printf("  Added %s (%s) %s\n", inv.Name, inv.Type.Label(), shortID(inv.ID))
	return nil
}

// loadHoldings reads holdings and applies the --type and --name filters.
func loadHoldings(s *store.Store) ([]model.Investment, error) {
	invs, err := s.ListInvestments()
	if err != nil {
		return nil, err
	}
	if flagPortType != "" {
		typ, err := model.ParseInvestmentType(flagPortType)
		if err != nil {
			return nil, err
		}
		invs = portfolio.FilterByType(invs, typ)
	}
	return portfolio.FilterByName(invs, flagPortFilter), nil
}

func runPortfolioList(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	invs, err := loadHoldings(s)
	if err != nil {
		return err
	}
	portfolio.SortByValue(invs)

	if flagJSON {
		if invs == nil {
			invs = []model.Investment{}
		}
		return printJSON(invs)
	}
	if len(invs) == 0 {
		fmt.Println("\n  No holdings yet. Add one with `finplan portfolio add`.")
		return nil
	}

	rows := make([][]string, 0, len(invs))
	for _, inv := range invs {
		rows = append(rows, []string{
			inv.Name,
			shortID(inv.ID),
			inv.Type.Label(),
			cli.FormatMoney(inv.InvestedAmount),
			cli.FormatMoney(inv.CurrentValue),
			cli.RenderGain(cli.FormatSignedPercent(inv.ReturnsPercent()), inv.ReturnsPercent()),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Holdings (%d)", len(invs)),
		Headers: []string{"Name", "ID", "Type", "Invested", "Current", "Return"},
		Rows:    rows,
	}))
	return nil
}

func runPortfolioUpdate(_ *cobra.Command, args []string) error {
	value, err := parseAmount("current", flagPortCurrent)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	inv, err := resolveHolding(s, args[0])
	if err != nil {
		return err
	}
	if err := s.UpdateCurrentValue(inv.ID, value); err != nil {
		return err
	}
	if !flagJSON {
		fmt.Printf("  %s now at %s\n", inv.Name, cli.FormatMoney(value))
	}
	return nil
}

func runPortfolioRemove(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	inv, err := resolveHolding(s, args[0])
	if err != nil {
		return err
	}
	if err := s.DeleteInvestment(inv.ID); err != nil {
		return err
	}
	if !flagJSON {
		fmt.Printf("  Removed %s\n", inv.Name)
	}
	return nil
}

func runPortfolioStats(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	invs, err := loadHoldings(s)
	if err != nil {
		return err
	}

	stats, ok := portfolio.QuickStats(invs)
	alloc := portfolio.Allocation(invs)

	if flagJSON {
		return printJSON(struct {
			Stats      model.PortfolioStats    `json:"stats"`
			Allocation []model.AllocationSlice `json:"allocation"`
		}{stats, alloc})
	}
	if !ok {
		fmt.Println("\n  No holdings yet. Add one with `finplan portfolio add`.")
		return nil
	}

	returns, _ := stats.TotalReturns.Float64()

	fmt.Println()
	fmt.Println(cli.RenderTitle("PORTFOLIO"))
	fmt.Println()
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Holdings", Value: fmt.Sprintf("%d across %d types", stats.Count, stats.UniqueTypes)},
		{Label: "Invested", Value: cli.FormatMoney(stats.TotalInvested)},
		{Label: "Current value", Value: cli.FormatMoney(stats.TotalCurrent)},
		{Label: "Returns", Value: cli.RenderGain(fmt.Sprintf("%s (%s)",
			cli.FormatSignedMoney(stats.TotalReturns), cli.FormatSignedPercent(stats.ReturnsPercent)), returns)},
		{Label: "Best", Value: fmt.Sprintf("%s %s", stats.Best.Name, cli.FormatSignedPercent(stats.BestReturnsPercent))},
		{Label: "Worst", Value: fmt.Sprintf("%s %s", stats.Worst.Name, cli.FormatSignedPercent(stats.WorstReturnsPercent))},
	}))
	fmt.Println()

	labelWidth := 0
	for _, a := range alloc {
		labelWidth = max(labelWidth, len(a.Label))
	}
	fmt.Println("  Allocation")
	for _, a := range alloc {
		fmt.Print(cli.RenderShareBar(a.Label, a.SharePercent, labelWidth, 30))
	}
	return nil
}

// resolveHolding finds a holding by full id or unique id prefix.
func resolveHolding(s *store.Store, ref string) (model.Investment, error) {
	invs, err := s.ListInvestments()
	if err != nil {
		return model.Investment{}, err
	}

	if id, err := uuid.Parse(ref); err == nil {
		for _, inv := range invs {
			if inv.ID == id {
				return inv, nil
			}
		}
		return model.Investment{}, fmt.Errorf("holding %s: %w", ref, store.ErrNotFound)
	}

	var matches []model.Investment
	for _, inv := range invs {
		if strings.HasPrefix(inv.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, inv)
		}
	}
	switch len(matches) {
	case 0:
		return model.Investment{}, fmt.Errorf("holding %s: %w", ref, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Investment{}, fmt.Errorf("id prefix %q matches %d holdings", ref, len(matches))
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
