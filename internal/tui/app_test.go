package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fakeHoldings struct {
	invs []model.Investment
	err  error
}

func (f fakeHoldings) ListInvestments() ([]model.Investment, error) { return f.invs, f.err }

type fakeHistory struct {
	saved []model.CalculationKind
}

func (f *fakeHistory) SaveCalculation(kind model.CalculationKind, input, result any) (model.Calculation, error) {
	f.saved = append(f.saved, kind)
	return model.Calculation{Kind: kind}, nil
}

func newTestApp(opts Options) App {
	if opts.Config.Defaults.Years == 0 {
		opts.Config = config.DefaultConfig()
	}
	a := NewApp(opts)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(App)
}

func send(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_ComputesDefaultGoal(t *testing.T) {
	a := newTestApp(Options{})
	if a.goalErr != nil {
		t.Fatalf("goalErr = %v", a.goalErr)
	}
	if a.goalIn.Target != 10_000_000 || a.goalIn.Years != 15 {
		t.Errorf("goalIn = %+v", a.goalIn)
	}
	if !a.goal.RequiredMonthly.IsPositive() {
		t.Errorf("RequiredMonthly = %s", a.goal.RequiredMonthly)
	}
	if !a.goal.StepUpMonthly.LessThan(a.goal.RequiredMonthly) {
		t.Errorf("step-up start %s should be below flat %s", a.goal.StepUpMonthly, a.goal.RequiredMonthly)
	}
	if len(a.schedule) != 15 {
		t.Errorf("schedule has %d years, want 15", len(a.schedule))
	}
}

func TestApp_InvalidInputShowsError(t *testing.T) {
	a := newTestApp(Options{})
	a.inputs[fieldYears].SetValue("abc")
	a.recompute()
	if a.goalErr == nil {
		t.Fatal("expected an error for non-numeric years")
	}
	if !strings.Contains(a.View(), "not a number") {
		t.Error("error should be rendered in the goal tab")
	}

	a.inputs[fieldYears].SetValue("99")
	a.recompute()
	if a.goalErr == nil {
		t.Fatal("expected an error for years out of range")
	}
}

func TestApp_InvalidInputClearsSchedule(t *testing.T) {
	a := newTestApp(Options{})
	if len(a.schedule) == 0 {
		t.Fatal("expected a schedule for the default goal")
	}
	a.inputs[fieldYears].SetValue("0")
	a.recompute()
	if a.schedule != nil {
		t.Errorf("schedule kept %d stale points after an invalid edit", len(a.schedule))
	}
	if !a.compare.SIP.FutureValue.IsZero() {
		t.Error("comparison kept stale values after an invalid edit")
	}
}

func TestApp_ScheduleErrorShownOnCompareTab(t *testing.T) {
	a := newTestApp(Options{})
	a = send(a, runeKey("c"))
	a.schedule, a.scheduleErr = nil, errors.New("schedule unavailable")
	if !strings.Contains(a.View(), "schedule unavailable") {
		t.Error("schedule error should replace the chart")
	}
}

func TestApp_FocusCycles(t *testing.T) {
	a := newTestApp(Options{})
	if a.focus != fieldTarget {
		t.Fatalf("initial focus = %d", a.focus)
	}
	a = send(a, tea.KeyMsg{Type: tea.KeyTab})
	if a.focus != fieldYears {
		t.Errorf("after tab focus = %d, want %d", a.focus, fieldYears)
	}
	a = send(a, tea.KeyMsg{Type: tea.KeyShiftTab})
	a = send(a, tea.KeyMsg{Type: tea.KeyShiftTab})
	if a.focus != fieldStepUp {
		t.Errorf("shift+tab should wrap to the last field, got %d", a.focus)
	}
}

func TestApp_InflationToggle(t *testing.T) {
	a := newTestApp(Options{})
	nominal := a.goal.EffectiveReturnPct

	a = send(a, runeKey("i"))
	if !a.inflationAdj {
		t.Fatal("i should enable inflation adjustment")
	}
	if a.goal.EffectiveReturnPct >= nominal {
		t.Errorf("real return %.2f should be below nominal %.2f", a.goal.EffectiveReturnPct, nominal)
	}
	if !strings.Contains(a.View(), "[x] inflation-adjusted") {
		t.Error("toggle state should be shown")
	}
}

func TestApp_PresetCycle(t *testing.T) {
	a := newTestApp(Options{})
	a = send(a, runeKey("n"))
	if a.goalIn.Target != 500_000 {
		t.Errorf("first preset target = %v", a.goalIn.Target)
	}
	if a.status != "Emergency Fund" {
		t.Errorf("status = %q", a.status)
	}
	a = send(a, runeKey("n"))
	if a.goalIn.Target != 1_000_000 {
		t.Errorf("second preset target = %v", a.goalIn.Target)
	}
}

func TestApp_TabKeysAndMouse(t *testing.T) {
	a := newTestApp(Options{})
	a = send(a, runeKey("c"))
	if a.activeTab != tabCompare {
		t.Fatalf("c -> tab %d", a.activeTab)
	}
	if !strings.Contains(a.View(), "Step-up plan from") {
		t.Error("compare tab should show the step-up chart")
	}

	a = send(a, runeKey("p"))
	if a.activeTab != tabPortfolio {
		t.Fatalf("p -> tab %d", a.activeTab)
	}

	// Click the first tab label.
	a = send(a, tea.MouseMsg{X: 1, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a.activeTab != tabGoal {
		t.Errorf("click -> tab %d, want goal", a.activeTab)
	}
}

func TestApp_DigitsEditFocusedInput(t *testing.T) {
	a := newTestApp(Options{})
	a = send(a, tea.KeyMsg{Type: tea.KeyTab}) // years
	for range len(a.inputs[fieldYears].Value()) {
		a = send(a, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	a = send(a, runeKey("2"))
	a = send(a, runeKey("0"))
	if got := a.inputs[fieldYears].Value(); got != "20" {
		t.Fatalf("years input = %q", got)
	}
	if a.goalIn.Years != 20 {
		t.Errorf("goal years = %d, want 20", a.goalIn.Years)
	}
	if a.activeTab != tabGoal {
		t.Error("digits must not switch tabs")
	}
}

func TestApp_SaveGoal(t *testing.T) {
	hist := &fakeHistory{}
	a := newTestApp(Options{History: hist})
	a = send(a, runeKey("s"))
	if len(hist.saved) != 1 || hist.saved[0] != model.KindGoal {
		t.Fatalf("saved = %v", hist.saved)
	}
	if a.status != "saved to history" {
		t.Errorf("status = %q", a.status)
	}
}

func TestApp_Portfolio(t *testing.T) {
	invs := []model.Investment{
		model.NewInvestment("Index fund", model.TypeMutualFund, decimal.NewFromInt(100_000), decimal.NewFromInt(130_000)),
		model.NewInvestment("Gold ETF", model.TypeETF, decimal.NewFromInt(50_000), decimal.NewFromInt(45_000)),
	}
	a := newTestApp(Options{Holdings: fakeHoldings{invs: invs}})

	cmd := a.loadHoldingsCmd()
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	a = send(a, cmd())
	a = send(a, runeKey("p"))

	view := a.View()
	for _, want := range []string{"Allocation (2 types)", "Index fund", "ETF"} {
		if !strings.Contains(view, want) {
			t.Errorf("portfolio view missing %q", want)
		}
	}
}

func TestApp_PortfolioLoadError(t *testing.T) {
	a := newTestApp(Options{Holdings: fakeHoldings{err: errors.New("disk gone")}})
	a = send(a, a.loadHoldingsCmd()())
	a = send(a, runeKey("p"))
	if !strings.Contains(a.View(), "disk gone") {
		t.Error("load error should be shown")
	}
}

func TestApp_PortfolioWithoutStore(t *testing.T) {
	a := newTestApp(Options{})
	if a.loadHoldingsCmd() != nil {
		t.Error("no store means no load command")
	}
	a = send(a, runeKey("p"))
	if !strings.Contains(a.View(), "No portfolio store") {
		t.Error("expected the no-store message")
	}
}

func TestApp_HelpAndNarrow(t *testing.T) {
	a := newTestApp(Options{})
	a = send(a, runeKey("?"))
	if !strings.Contains(a.View(), "Keyboard shortcuts") {
		t.Error("? should open help")
	}
	a = send(a, runeKey("x"))
	if a.showHelp {
		t.Error("any key should close help")
	}

	a = send(a, tea.WindowSizeMsg{Width: 40, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("narrow terminals should get a notice")
	}
}

func TestApp_Quit(t *testing.T) {
	a := newTestApp(Options{})
	_, cmd := a.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
