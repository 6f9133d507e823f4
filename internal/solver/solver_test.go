package solver

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
)

func monthlyInput(target float64, years int, annualPct, stepUpPct float64) Input {
	return Input{
		TargetValue:    target,
		HorizonPeriods: years * 12,
		PeriodicRate:   annualPct / 100 / 12,
		StepUpPerYear:  stepUpPct / 100,
		PeriodsPerYear: 12,
	}
}

func TestAccumulate_ZeroRateFlat(t *testing.T) {
	in := Input{TargetValue: 1, HorizonPeriods: 24, PeriodsPerYear: 12}
	if got := Accumulate(100, in); got != 2400 {
		t.Fatalf("Accumulate = %v, want 2400", got)
	}
}

func TestAccumulate_StepUpOnlyAtCompletedYears(t *testing.T) {
	// 18 periods: 12 at c, then 6 at 2c. The trailing half year gets no extra step.
	in := Input{TargetValue: 1, HorizonPeriods: 18, StepUpPerYear: 1.0, PeriodsPerYear: 12}
	if got := Accumulate(10, in); got != 240 {
		t.Fatalf("Accumulate = %v, want 240", got)
	}

	in.HorizonPeriods = 25
	// 12*10 + 12*20 + 1*40
	if got := Accumulate(10, in); got != 400 {
		t.Fatalf("Accumulate = %v, want 400", got)
	}
}

func TestAccumulate_CompoundsFromStartOfPeriod(t *testing.T) {
	in := Input{TargetValue: 1, HorizonPeriods: 2, PeriodicRate: 0.1, PeriodsPerYear: 12}
	want := 100*1.1*1.1 + 100*1.1
	if got := Accumulate(100, in); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Accumulate = %v, want %v", got, want)
	}
}

func TestSolve_Converges(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"retirement step-up", monthlyInput(10_000_000, 15, 12, 10)},
		{"zero rate", monthlyInput(1_200_000, 10, 0, 0)},
		{"zero rate step-up", monthlyInput(1_200_000, 10, 0, 5)},
		{"short horizon", monthlyInput(50_000, 1, 8, 10)},
		{"partial year", Input{TargetValue: 750_000, HorizonPeriods: 30, PeriodicRate: 0.01, StepUpPerYear: 0.1, PeriodsPerYear: 12}},
		{"quarterly", Input{TargetValue: 2_000_000, HorizonPeriods: 40, PeriodicRate: 0.02, StepUpPerYear: 0.05, PeriodsPerYear: 4}},
		{"tiny target", monthlyInput(1, 1, 12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Solve(tt.in)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if res.StartingContribution < 0 || math.IsNaN(res.StartingContribution) {
				t.Fatalf("StartingContribution = %v", res.StartingContribution)
			}
			if diff := math.Abs(Accumulate(res.StartingContribution, tt.in) - tt.in.TargetValue); diff >= DefaultTolerance {
				t.Fatalf("accumulated value off by %.4f", diff)
			}
			if res.AchievedValue != Accumulate(res.StartingContribution, tt.in) {
				t.Fatalf("AchievedValue %v does not match Accumulate", res.AchievedValue)
			}
			if res.Iterations < 1 || res.Iterations > DefaultMaxIterations {
				t.Fatalf("Iterations = %d, want 1..%d", res.Iterations, DefaultMaxIterations)
			}
		})
	}
}

func TestSolve_ZeroStepUpMatchesFlatAnnuity(t *testing.T) {
	for _, pct := range []float64{0, 6, 12, 18} {
		in := monthlyInput(5_000_000, 12, pct, 0)
		res, err := Solve(in)
		if err != nil {
			t.Fatalf("Solve(%v%%): %v", pct, err)
		}
		flat := FlatContribution(in.TargetValue, in.HorizonPeriods, in.PeriodicRate)
		if diff := math.Abs(Accumulate(flat, in) - in.TargetValue); diff >= DefaultTolerance {
			t.Fatalf("closed form off by %.4f at %v%%", diff, pct)
		}
		// Both land within ε of the target, so they differ by at most 2ε of value.
		slope := Accumulate(1, in)
		if diff := math.Abs(res.StartingContribution-flat) * slope; diff >= 2*DefaultTolerance {
			t.Fatalf("solver %.4f vs closed form %.4f at %v%% (value gap %.4f)",
				res.StartingContribution, flat, pct, diff)
		}
	}
}

func TestSolve_StepUpStartsBelowFlat(t *testing.T) {
	in := monthlyInput(10_000_000, 15, 12, 10)
	res, err := Solve(in)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	flat := FlatContribution(in.TargetValue, in.HorizonPeriods, in.PeriodicRate)
	if res.StartingContribution >= flat {
		t.Fatalf("step-up start %.2f should be below flat %.2f", res.StartingContribution, flat)
	}
	t.Logf("step-up start %.2f, flat %.2f, %d iterations", res.StartingContribution, flat, res.Iterations)
}

func TestSolve_MonotoneInTarget(t *testing.T) {
	prev := 0.0
	for target := 100_000.0; target <= 50_000_000; target *= 1.7 {
		res, err := Solve(monthlyInput(target, 20, 11, 7))
		if err != nil {
			t.Fatalf("Solve(%v): %v", target, err)
		}
		if res.StartingContribution < prev {
			t.Fatalf("target %.0f gave %.4f, below previous %.4f", target, res.StartingContribution, prev)
		}
		prev = res.StartingContribution
	}
}

func TestSolve_Idempotent(t *testing.T) {
	in := monthlyInput(3_000_000, 8, 10, 10)
	first, err := Solve(in)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	second, err := Solve(in)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestSolve_ConcurrentCallsAgree(t *testing.T) {
	in := monthlyInput(3_000_000, 8, 10, 10)
	want, err := Solve(in)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Solve(in)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Fatalf("goroutine %d got %+v, want %+v", i, got, want)
		}
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	valid := monthlyInput(1_000_000, 10, 12, 10)
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero target", func(in *Input) { in.TargetValue = 0 }},
		{"negative target", func(in *Input) { in.TargetValue = -5 }},
		{"NaN target", func(in *Input) { in.TargetValue = math.NaN() }},
		{"inf target", func(in *Input) { in.TargetValue = math.Inf(1) }},
		{"zero horizon", func(in *Input) { in.HorizonPeriods = 0 }},
		{"negative rate", func(in *Input) { in.PeriodicRate = -0.01 }},
		{"negative step-up", func(in *Input) { in.StepUpPerYear = -0.1 }},
		{"zero periods per year", func(in *Input) { in.PeriodsPerYear = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := Solve(in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSolveWithOptions_BudgetExhausted(t *testing.T) {
	in := monthlyInput(10_000_000, 15, 12, 10)
	_, err := SolveWithOptions(in, Options{Tolerance: 1e-9, MaxIterations: 3})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestSolve_LargeTargetsConverge(t *testing.T) {
	for _, target := range []float64{1e13, 1e15, 1e18} {
		in := monthlyInput(target, 15, 12, 10)
		res, err := Solve(in)
		if err != nil {
			t.Fatalf("target %g: %v", target, err)
		}
		if res.Iterations > DefaultMaxIterations {
			t.Fatalf("target %g: Iterations = %d", target, res.Iterations)
		}
		if rel := math.Abs(res.AchievedValue-target) / target; rel > 1e-12 {
			t.Errorf("target %g: achieved %g, relative error %g", target, res.AchievedValue, rel)
		}
	}
}

func TestSolveWithOptions_BudgetErrorNamesTolerance(t *testing.T) {
	in := monthlyInput(10_000_000, 15, 12, 10)
	_, err := SolveWithOptions(in, Options{MaxIterations: 2})
	if err == nil || !strings.Contains(err.Error(), "tolerance") {
		t.Fatalf("err = %v, want a hint about the tolerance", err)
	}
}

func TestSolveWithOptions_RespectsBudget(t *testing.T) {
	in := monthlyInput(10_000_000, 15, 12, 10)
	res, err := SolveWithOptions(in, Options{MaxIterations: 40})
	if err != nil {
		t.Fatalf("SolveWithOptions: %v", err)
	}
	if res.Iterations > 40 {
		t.Fatalf("Iterations = %d, want <= 40", res.Iterations)
	}
}

func TestFlatContribution(t *testing.T) {
	if got := FlatContribution(1200, 12, 0); got != 100 {
		t.Fatalf("zero rate = %v, want 100", got)
	}
	if got := FlatContribution(1200, 0, 0.01); got != 0 {
		t.Fatalf("zero periods = %v, want 0", got)
	}
}

func BenchmarkSolve(b *testing.B) {
	in := monthlyInput(10_000_000, 15, 12, 10)
	for i := 0; i < b.N; i++ {
		if _, err := Solve(in); err != nil {
			b.Fatal(err)
		}
	}
}
