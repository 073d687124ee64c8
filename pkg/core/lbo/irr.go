package lbo

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
)

// SolverConfig holds the numerical settings for the IRR fallback cascade.
type SolverConfig struct {
	// Tolerance is the |NPV| below which a root is accepted.
	Tolerance float64 `json:"tolerance,omitempty"`

	// MaxIterations bounds each Newton run.
	MaxIterations int `json:"max_iterations,omitempty"`

	// Damping limits the Newton step to Damping * max(1, |rate|) to
	// prevent overshooting.
	Damping float64 `json:"damping,omitempty"`

	// DerivativeFloor is the minimum |dNPV/dr|; below it the Newton
	// iteration stops to avoid division by near-zero.
	DerivativeFloor float64 `json:"derivative_floor,omitempty"`

	// BracketLow and BracketHigh bound the bisection interval.
	BracketLow  float64 `json:"bracket_low,omitempty"`
	BracketHigh float64 `json:"bracket_high,omitempty"`

	// FinanceRate and ReinvestRate parameterize the MIRR fallback.
	FinanceRate  float64 `json:"finance_rate,omitempty"`
	ReinvestRate float64 `json:"reinvest_rate,omitempty"`
}

// DefaultSolverConfig provides production-ready defaults.
var DefaultSolverConfig = SolverConfig{
	Tolerance:       1e-6,
	MaxIterations:   100,
	Damping:         0.5,
	DerivativeFloor: 1e-12,
	BracketLow:      -0.99,
	BracketHigh:     10.0,
	FinanceRate:     0.08,
	ReinvestRate:    0.08,
}

// newtonStarts are the initial guesses tried in order. Six distinct starts
// cover the plausible private-equity return range on both sides.
var newtonStarts = [...]float64{0.10, 0.20, 0.05, 0.30, 0.50, -0.10}

// Method names reported in IRRSolution and in the failure taxonomy.
const (
	MethodNewton        = "newton"
	MethodBisection     = "bisection"
	MethodMIRR          = "mirr"
	MethodHoldingPeriod = "holding_period"

	bisectionMaxIterations = 200
)

// MethodAttempt records one solver attempt so downstream consumers can
// assess confidence in the produced rate.
type MethodAttempt struct {
	Method    string  `json:"method"`
	Start     float64 `json:"start,omitempty"`
	Converged bool    `json:"converged"`
	NPV       float64 `json:"npv,omitempty"`
}

// IRRSolution is the resolved rate plus the full attempt trail.
type IRRSolution struct {
	Rate     float64         `json:"rate"`
	Method   string          `json:"method"`
	Warnings []string        `json:"warnings,omitempty"`
	Attempts []MethodAttempt `json:"attempts,omitempty"`
}

// SolveIRR resolves the internal rate of return of a period-0-first cash
// flow series through the fallback cascade:
//
//  1. Zero sign changes: root-finding is ill-posed; the geometric
//     holding-period return of the series is reported instead.
//  2. Multiple sign changes: possible multiple roots; MIRR is preferred
//     for stability.
//  3. Damped Newton from six distinct starts; the converged candidate with
//     NPV closest to zero wins.
//  4. Bisection on the bounded bracket, guaranteed given a sign change of
//     NPV across it.
//  5. MIRR with the configured finance/reinvestment rates.
//
// Every fallback transition is logged and recorded in the solution.
func SolveIRR(logger *zap.Logger, cashflows []float64, cfg SolverConfig) (IRRSolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	if len(cashflows) < 2 {
		return IRRSolution{}, &errs.InvalidInputError{
			Field:  "cashflows",
			Reason: "series must contain at least two periods",
		}
	}

	var sol IRRSolution

	switch countSignChanges(cashflows) {
	case 0:
		rate, err := holdingPeriodReturn(cashflows)
		if err != nil {
			return IRRSolution{}, err
		}
		logger.Info("lbo: zero sign changes; reporting geometric holding-period return, not an IRR",
			zap.Float64("rate", rate))
		sol.Rate = rate
		sol.Method = MethodHoldingPeriod
		sol.Attempts = append(sol.Attempts, MethodAttempt{Method: MethodHoldingPeriod, Converged: true})
		return sol, nil
	case 1:
		// Conventional series; proceed to Newton.
	default:
		warn := "multiple sign changes; IRR may have multiple roots, using MIRR"
		logger.Warn("lbo: " + warn)
		sol.Warnings = append(sol.Warnings, warn)
		return finishWithMIRR(logger, cashflows, cfg, sol, nil)
	}

	// Damped Newton from each start.
	type candidate struct {
		rate float64
		npv  float64
	}
	var best *candidate
	for _, start := range newtonStarts {
		rate, converged := newtonFrom(cashflows, start, cfg)
		v := npv(cashflows, rate)
		sol.Attempts = append(sol.Attempts, MethodAttempt{
			Method:    MethodNewton,
			Start:     start,
			Converged: converged,
			NPV:       v,
		})
		if !converged || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if best == nil || math.Abs(v) < math.Abs(best.npv) {
			best = &candidate{rate: rate, npv: v}
		}
	}
	if best != nil {
		sol.Rate = best.rate
		sol.Method = MethodNewton
		logger.Debug("lbo: newton converged",
			zap.Float64("rate", best.rate),
			zap.Float64("npv", best.npv))
		return sol, nil
	}

	logger.Warn("lbo: newton failed to converge from all starts; falling back to bisection")

	if rate, converged := bisect(cashflows, cfg); converged {
		v := npv(cashflows, rate)
		sol.Attempts = append(sol.Attempts, MethodAttempt{Method: MethodBisection, Converged: true, NPV: v})
		sol.Rate = rate
		sol.Method = MethodBisection
		return sol, nil
	}
	sol.Attempts = append(sol.Attempts, MethodAttempt{Method: MethodBisection, Converged: false})

	logger.Warn("lbo: bisection could not bracket a root; falling back to MIRR")
	return finishWithMIRR(logger, cashflows, cfg, sol, []string{MethodNewton, MethodBisection})
}

func finishWithMIRR(logger *zap.Logger, cashflows []float64, cfg SolverConfig, sol IRRSolution, tried []string) (IRRSolution, error) {
	rate, err := mirr(cashflows, cfg.FinanceRate, cfg.ReinvestRate)
	if err != nil {
		return IRRSolution{}, &errs.NumericalFailureError{
			Op:      "lbo.irr",
			Methods: append(tried, MethodMIRR),
			Reason:  err.Error(),
		}
	}
	sol.Attempts = append(sol.Attempts, MethodAttempt{Method: MethodMIRR, Converged: true})
	sol.Rate = rate
	sol.Method = MethodMIRR
	logger.Info("lbo: modified IRR produced the result",
		zap.Float64("rate", rate),
		zap.Float64("finance_rate", cfg.FinanceRate),
		zap.Float64("reinvest_rate", cfg.ReinvestRate))
	return sol, nil
}

func (c SolverConfig) withDefaults() SolverConfig {
	d := DefaultSolverConfig
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	// MaxIterations of zero is honored as-is: Newton is skipped entirely
	// and the cascade proceeds to bisection.
	if c.MaxIterations < 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Damping <= 0 {
		c.Damping = d.Damping
	}
	if c.DerivativeFloor <= 0 {
		c.DerivativeFloor = d.DerivativeFloor
	}
	if c.BracketLow == 0 && c.BracketHigh == 0 {
		c.BracketLow = d.BracketLow
		c.BracketHigh = d.BracketHigh
	}
	if c.FinanceRate == 0 {
		c.FinanceRate = d.FinanceRate
	}
	if c.ReinvestRate == 0 {
		c.ReinvestRate = d.ReinvestRate
	}
	return c
}

// countSignChanges counts sign transitions over the non-zero flows.
func countSignChanges(cashflows []float64) int {
	changes := 0
	prev := 0.0
	for _, cf := range cashflows {
		if cf == 0 {
			continue
		}
		if prev != 0 && math.Signbit(cf) != math.Signbit(prev) {
			changes++
		}
		prev = cf
	}
	return changes
}

// holdingPeriodReturn is the geometric growth of the series itself,
// (|last|/|first|)^(1/n) - 1. With zero sign changes there is no investment
// round trip, so an IRR does not exist.
func holdingPeriodReturn(cashflows []float64) (float64, error) {
	first := cashflows[0]
	last := cashflows[len(cashflows)-1]
	n := len(cashflows) - 1
	if first == 0 || last == 0 {
		return 0, &errs.NumericalFailureError{
			Op:      "lbo.irr",
			Methods: []string{MethodHoldingPeriod},
			Reason:  "degenerate series: zero endpoint flow",
		}
	}
	return math.Pow(math.Abs(last/first), 1/float64(n)) - 1, nil
}

// npv discounts the series at rate with period 0 undiscounted.
func npv(cashflows []float64, rate float64) float64 {
	var v float64
	discount := 1.0
	for t, cf := range cashflows {
		if t > 0 {
			discount *= 1 + rate
		}
		v += cf / discount
	}
	return v
}

// dnpv is the analytic derivative of npv with respect to rate.
func dnpv(cashflows []float64, rate float64) float64 {
	var v float64
	for t, cf := range cashflows {
		if t == 0 {
			continue
		}
		v -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return v
}

func newtonFrom(cashflows []float64, start float64, cfg SolverConfig) (float64, bool) {
	rate := start
	for it := 0; it < cfg.MaxIterations; it++ {
		v := npv(cashflows, rate)
		if math.Abs(v) < cfg.Tolerance {
			return rate, true
		}
		d := dnpv(cashflows, rate)
		if math.Abs(d) < cfg.DerivativeFloor || math.IsNaN(d) || math.IsInf(d, 0) {
			return rate, false
		}
		step := v / d
		limit := cfg.Damping * math.Max(1, math.Abs(rate))
		if math.Abs(step) > limit {
			step = math.Copysign(limit, step)
		}
		rate -= step
		if rate <= -1 {
			rate = -1 + 1e-6
		}
	}
	return rate, math.Abs(npv(cashflows, rate)) < cfg.Tolerance
}

// bisect converges on the bounded bracket when NPV changes sign across it.
func bisect(cashflows []float64, cfg SolverConfig) (float64, bool) {
	lo, hi := cfg.BracketLow, cfg.BracketHigh
	flo, fhi := npv(cashflows, lo), npv(cashflows, hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < bisectionMaxIterations; i++ {
		mid := (lo + hi) / 2
		fmid := npv(cashflows, mid)
		if math.Abs(fmid) < cfg.Tolerance || (hi-lo)/2 < 1e-12 {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, false
}

// mirr compounds positive flows forward at the reinvestment rate and
// discounts negative flows back at the finance rate.
func mirr(cashflows []float64, financeRate, reinvestRate float64) (float64, error) {
	n := len(cashflows) - 1
	var fvPositive, pvNegative float64
	for t, cf := range cashflows {
		switch {
		case cf > 0:
			fvPositive += cf * math.Pow(1+reinvestRate, float64(n-t))
		case cf < 0:
			pvNegative += -cf / math.Pow(1+financeRate, float64(t))
		}
	}
	if pvNegative == 0 || fvPositive == 0 {
		return 0, fmt.Errorf("mirr undefined: series needs both positive and negative flows")
	}
	return math.Pow(fvPositive/pvNegative, 1/float64(n)) - 1, nil
}
