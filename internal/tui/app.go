// Package tui provides the interactive Bubble Tea goal planner for finplan.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/finplan/internal/calc"
	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/model"
	"github.com/theirongolddev/finplan/internal/tui/components"
	"github.com/theirongolddev/finplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Holdings reads the saved portfolio. *store.Store satisfies it.
type Holdings interface {
	ListInvestments() ([]model.Investment, error)
}

// History records calculations. *store.Store satisfies it.
type History interface {
	SaveCalculation(kind model.CalculationKind, input, result any) (model.Calculation, error)
}

// Options configure the app. Holdings and History are optional.
type Options struct {
	Config   config.Config
	FirstRun bool
	Holdings Holdings
	History  History
}

// HoldingsLoadedMsg is sent when the portfolio has been read.
type HoldingsLoadedMsg struct {
	Investments []model.Investment
	Err         error
}

// Goal input fields, in focus order.
const (
	fieldTarget = iota
	fieldYears
	fieldReturn
	fieldInflation
	fieldStepUp
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Target amount",
	"Years",
	"Expected return %",
	"Inflation %",
	"Yearly step-up %",
}

const (
	tabGoal = iota
	tabCompare
	tabPortfolio
)

const (
	minTerminalWidth = 70
	maxContentWidth  = 120
)

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Goal inputs
	inputs       []textinput.Model
	focus        int
	inflationAdj bool

	// Derived from inputs on every edit
	goal        calc.GoalResult
	goalIn      calc.GoalInput
	goalErr     error
	schedule    []calc.YearPoint
	scheduleErr error
	compare     calc.CompareResult
	compareErr  error
	presetIndex int

	// Portfolio
	holdings    []model.Investment
	holdingsErr error
	loaded      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

// NewApp creates the planner seeded from the config defaults.
func NewApp(opts Options) App {
	d := opts.Config.Defaults
	values := [fieldCount]string{
		fieldTarget:    "10000000",
		fieldYears:     strconv.Itoa(d.Years),
		fieldReturn:    formatInput(d.ExpectedReturnPct),
		fieldInflation: formatInput(d.InflationPct),
		fieldStepUp:    formatInput(d.StepUpPct),
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 14
		ti.Width = 16
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[fieldTarget].Focus()

	a := App{
		opts:        opts,
		inputs:      inputs,
		needSetup:   opts.FirstRun,
		presetIndex: -1,
	}
	if a.needSetup {
		vals := SetupValuesFrom(opts.Config)
		a.setupVals = &vals
		a.setupForm = NewSetupForm(a.setupVals)
	}
	a.recompute()
	return a
}

func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, textinput.Blink, a.loadHoldingsCmd()}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

func (a App) loadHoldingsCmd() tea.Cmd {
	h := a.opts.Holdings
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		invs, err := h.ListInvestments()
		return HoldingsLoadedMsg{Investments: invs, Err: err}
	}
}

// recompute parses the inputs and reruns the goal, schedule, and comparison.
func (a *App) recompute() {
	a.schedule, a.scheduleErr = nil, nil
	a.compare, a.compareErr = calc.CompareResult{}, nil

	in, err := a.parseGoalInput()
	if err != nil {
		a.goalErr = err
		return
	}
	a.goalIn = in

	res, err := calc.GoalWithOptions(in, a.opts.Config.SolverOptions())
	if err != nil {
		a.goalErr = err
		return
	}
	a.goal, a.goalErr = res, nil

	start, _ := res.StepUpMonthly.Float64()
	a.schedule, a.scheduleErr = calc.StepUpSchedule(calc.StepUpSIPInput{
		Monthly:         max(start, 1),
		Years:           in.Years,
		AnnualReturnPct: in.EffectiveReturnPct(),
		StepUpPct:       in.StepUpPct,
	})

	flat, _ := res.RequiredMonthly.Float64()
	a.compare, a.compareErr = calc.Compare(calc.CompareInput{
		Monthly:         max(flat, 1),
		Years:           in.Years,
		AnnualReturnPct: in.EffectiveReturnPct(),
	})
}

func (a App) parseGoalInput() (calc.GoalInput, error) {
	num := func(i int) (float64, error) {
		s := strings.ReplaceAll(strings.TrimSpace(a.inputs[i].Value()), ",", "")
		if s == "" {
			return 0, fmt.Errorf("%s is empty", fieldLabels[i])
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", fieldLabels[i], s)
		}
		return f, nil
	}

	var in calc.GoalInput
	var err error
	if in.Target, err = num(fieldTarget); err != nil {
		return in, err
	}
	years, err := num(fieldYears)
	if err != nil {
		return in, err
	}
	in.Years = int(years)
	if in.AnnualReturnPct, err = num(fieldReturn); err != nil {
		return in, err
	}
	if in.InflationPct, err = num(fieldInflation); err != nil {
		return in, err
	}
	if in.StepUpPct, err = num(fieldStepUp); err != nil {
		return in, err
	}
	in.InflationAdjusted = a.inflationAdj
	return in, nil
}

func (a *App) setFocus(i int) tea.Cmd {
	a.inputs[a.focus].Blur()
	a.focus = (i + fieldCount) % fieldCount
	return a.inputs[a.focus].Focus()
}

// cyclePreset fills the target with the next goal preset.
func (a *App) cyclePreset() {
	a.presetIndex = (a.presetIndex + 1) % len(calc.GoalPresets)
	p := calc.GoalPresets[a.presetIndex]
	a.inputs[fieldTarget].SetValue(formatInput(p.Amount))
	a.status = p.Name
	a.recompute()
}

// saveGoal records the current plan in history.
func (a *App) saveGoal() {
	if a.opts.History == nil || a.goalErr != nil {
		return
	}
	if _, err := a.opts.History.SaveCalculation(model.KindGoal, a.goalIn, a.goal); err != nil {
		a.status = "save failed: " + err.Error()
		return
	}
	a.status = "saved to history"
}

// isNumericKey reports whether msg should be typed into the focused input.
func isNumericKey(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes {
		return false
	}
	for _, r := range msg.Runes {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case HoldingsLoadedMsg:
		a.holdings, a.holdingsErr, a.loaded = msg.Investments, msg.Err, true
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.needSetup {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := components.TabAtX(msg.X, a.activeTab); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == tabGoal {
			switch {
			case isNumericKey(msg), key == "backspace", key == "delete",
				key == "left", key == "right", key == "home", key == "end":
				var cmd tea.Cmd
				a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
				a.presetIndex = -1
				a.status = ""
				a.recompute()
				return a, cmd
			case key == "tab", key == "down", key == "enter":
				return a, a.setFocus(a.focus + 1)
			case key == "shift+tab", key == "up":
				return a, a.setFocus(a.focus - 1)
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "i":
			a.inflationAdj = !a.inflationAdj
			a.recompute()
			return a, nil
		case "n":
			a.cyclePreset()
			return a, nil
		case "s":
			a.saveGoal()
			return a, nil
		case "r":
			return a, a.loadHoldingsCmd()
		case "ctrl+right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		case "ctrl+left":
			a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
			return a, nil
		}
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := a.opts.Config
		if err := a.setupVals.Apply(&cfg); err != nil {
			a.status = "setup: " + err.Error()
		} else if err := config.Save(cfg); err != nil {
			a.status = "config not saved: " + err.Error()
		} else {
			a.status = "saved " + config.Path()
		}
		a.opts.Config = cfg
		theme.SetActive(cfg.Appearance.Theme)
		a.needSetup, a.setupForm = false, nil
		a = a.reseed()
		return a, nil
	case huh.StateAborted:
		a.needSetup, a.setupForm = false, nil
		return a, nil
	}
	return a, cmd
}

// reseed resets the rate inputs to the config defaults after setup.
func (a App) reseed() App {
	d := a.opts.Config.Defaults
	a.inputs[fieldYears].SetValue(strconv.Itoa(d.Years))
	a.inputs[fieldReturn].SetValue(formatInput(d.ExpectedReturnPct))
	a.inputs[fieldInflation].SetValue(formatInput(d.InflationPct))
	a.inputs[fieldStepUp].SetValue(formatInput(d.StepUpPct))
	a.recompute()
	return a
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  finplan needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	cw := a.contentWidth()

	var body string
	switch a.activeTab {
	case tabGoal:
		body = a.renderGoalTab(cw)
	case tabCompare:
		body = a.renderCompareTab(cw)
	case tabPortfolio:
		body = a.renderPortfolioTab(cw)
	}

	hints := "[tab]next field  [i]nflation  [n]preset  [s]ave  [?]help  [q]uit"
	if a.activeTab != tabGoal {
		hints = "[g/c/p]tabs  [r]eload  [?]help  [q]uit"
	}

	var b strings.Builder
	b.WriteString(components.RenderTabBar(a.activeTab))
	b.WriteString("\n\n")
	b.WriteString(body)

	content := b.String()
	if a.height > 0 {
		lines := strings.Count(content, "\n") + 1
		if pad := a.height - lines - 1; pad > 0 {
			content += strings.Repeat("\n", pad)
		}
	}
	return content + "\n" + components.RenderStatusBar(cw, hints, a.status)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Focus).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	bindings := []struct{ key, desc string }{
		{"g c p", "Goal, Compare, Portfolio tabs"},
		{"tab ↓ enter", "Next input"},
		{"shift+tab ↑", "Previous input"},
		{"0-9 .", "Edit the focused input"},
		{"i", "Toggle inflation-adjusted return"},
		{"n", "Next preset goal"},
		{"s", "Save the plan to history"},
		{"r", "Reload holdings"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(fmt.Sprintf("%-12s", bind.key)), descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}
