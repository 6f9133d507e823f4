// Package solver finds the starting contribution of a step-up contribution
// schedule that reaches a target future value.
package solver

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned before any search when the input is outside
	// the valid domain.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOutOfRange is returned when the target cannot be bracketed or the
	// search does not converge within the iteration budget.
	ErrOutOfRange = errors.New("target out of range")
)

const (
	// DefaultTolerance is the absolute convergence threshold, one currency unit.
	DefaultTolerance = 1.0
	// DefaultMaxIterations is the bisection budget.
	DefaultMaxIterations = 50
	// DefaultFloor is the smallest contribution the search starts from.
	DefaultFloor = 0.01

	// relTolerance floors the tolerance relative to the target. Past about 1e13
	// an absolute threshold of one unit is below what float64 sums can resolve.
	relTolerance = 1e-12

	// maxWidenings bounds how often the flat upper bound is doubled before the
	// goal is reported unreachable.
	maxWidenings = 8
)

// Input describes one solve. PeriodicRate is per period, StepUpPerYear is a
// fraction (0.10 for 10%) applied once per completed year.
type Input struct {
	TargetValue    float64 `json:"target_value"`
	HorizonPeriods int     `json:"horizon_periods"`
	PeriodicRate   float64 `json:"periodic_rate"`
	StepUpPerYear  float64 `json:"step_up_per_year"`
	PeriodsPerYear int     `json:"periods_per_year"`
}

// Result is the outcome of a successful solve.
type Result struct {
	StartingContribution float64 `json:"starting_contribution"`
	AchievedValue        float64 `json:"achieved_value"`
	Iterations           int     `json:"iterations"`
}

// Options tunes the bisection. Zero fields take the package defaults.
// Tolerance is absolute, but never tighter than a 1e-12 share of the target.
type Options struct {
	Tolerance     float64
	MaxIterations int
	Floor         float64
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Floor <= 0 {
		o.Floor = DefaultFloor
	}
	return o
}

// Validate reports whether in is inside the solver's domain.
func (in Input) Validate() error {
	switch {
	case !finite(in.TargetValue) || in.TargetValue <= 0:
		return fmt.Errorf("%w: target value must be positive, got %v", ErrInvalidInput, in.TargetValue)
	case in.HorizonPeriods <= 0:
		return fmt.Errorf("%w: horizon must be at least one period, got %d", ErrInvalidInput, in.HorizonPeriods)
	case in.PeriodsPerYear <= 0:
		return fmt.Errorf("%w: periods per year must be positive, got %d", ErrInvalidInput, in.PeriodsPerYear)
	case !finite(in.PeriodicRate) || in.PeriodicRate < 0:
		return fmt.Errorf("%w: periodic rate must be non-negative, got %v", ErrInvalidInput, in.PeriodicRate)
	case !finite(in.StepUpPerYear) || in.StepUpPerYear < 0:
		return fmt.Errorf("%w: step-up must be non-negative, got %v", ErrInvalidInput, in.StepUpPerYear)
	}
	return nil
}

// Accumulate simulates the contribution stream starting at c and returns its
// value at the end of the horizon. The contribution for period i (1-based) is
// paid at the start of the period and compounds for HorizonPeriods-i+1
// periods. The contribution steps up at the start of period k*PeriodsPerYear+1.
func Accumulate(c float64, in Input) float64 {
	growth := 1 + in.PeriodicRate
	step := 1 + in.StepUpPerYear

	total := 0.0
	contribution := c
	for i := 1; i <= in.HorizonPeriods; i++ {
		if i > 1 && in.PeriodsPerYear > 0 && (i-1)%in.PeriodsPerYear == 0 {
			contribution *= step
		}
		remaining := in.HorizonPeriods - i + 1
		total += contribution * math.Pow(growth, float64(remaining))
	}
	return total
}

// Solve runs SolveWithOptions with the default tolerance and iteration budget.
func Solve(in Input) (Result, error) {
	return SolveWithOptions(in, Options{})
}

// SolveWithOptions finds the smallest starting contribution whose accumulated
// value reaches in.TargetValue, to within opts.Tolerance.
func SolveWithOptions(in Input, opts Options) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()
	target := in.TargetValue

	low := opts.Floor
	high := target / float64(in.HorizonPeriods)

	// Tiny targets: the floor already overshoots, search below it.
	if low >= high || Accumulate(low, in) >= target {
		high = math.Max(low, high)
		low = 0
	}

	widened := 0
	for Accumulate(high, in) < target {
		if widened == maxWidenings {
			return Result{}, fmt.Errorf("%w: %.2f is not reachable in %d periods",
				ErrOutOfRange, target, in.HorizonPeriods)
		}
		low = high
		high *= 2
		widened++
	}

	tol := math.Max(opts.Tolerance, target*relTolerance)

	var mid, achieved float64
	for i := 1; i <= opts.MaxIterations; i++ {
		mid = (low + high) / 2
		achieved = Accumulate(mid, in)

		if math.Abs(achieved-target) < tol {
			return Result{StartingContribution: mid, AchievedValue: achieved, Iterations: i}, nil
		}
		if achieved < target {
			low = mid
		} else {
			high = mid
		}
	}

	return Result{}, fmt.Errorf("%w: no convergence to within %g in %d iterations (last %.4f reached %.2f of %.2f); loosen the tolerance or raise the budget",
		ErrOutOfRange, tol, opts.MaxIterations, mid, achieved, target)
}

// FlatContribution is the closed-form level contribution, paid at the start
// of each period, that grows to target over periods at rate per period.
func FlatContribution(target float64, periods int, rate float64) float64 {
	if periods <= 0 {
		return 0
	}
	n := float64(periods)
	if rate == 0 {
		return target / n
	}
	return target * rate / ((math.Pow(1+rate, n) - 1) * (1 + rate))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
