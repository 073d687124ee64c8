package valuation

import (
	"math"
	"testing"

	"mna_valuation/pkg/core/assumption"
	"mna_valuation/pkg/core/errs"
)

func mcConfig() MonteCarloConfig {
	return MonteCarloConfig{
		Trials: 2000,
		Seed:   12345,
		RiskFreeRate: assumption.Distribution{
			Type: assumption.DistNormal, Mean: 0.03, Std: 0.004,
		},
		Beta: assumption.Distribution{
			Type: assumption.DistTriangular, Min: 0.8, Max: 1.4, Mode: 1.0,
		},
		TerminalGrowth: assumption.Distribution{
			Type: assumption.DistUniform, Min: 0.015, Max: 0.03,
		},
	}
}

func TestMonteCarloReproducible(t *testing.T) {
	a, err := MonteCarlo(nil, goldenInputs(), mcConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := MonteCarlo(nil, goldenInputs(), mcConfig())
	if err != nil {
		t.Fatal(err)
	}
	if a.Mean != b.Mean || a.StdDev != b.StdDev || a.P10 != b.P10 || a.P90 != b.P90 {
		t.Errorf("same seed produced different summaries: %+v vs %+v", a, b)
	}
}

func TestMonteCarloWorkerCountInvariant(t *testing.T) {
	// Each trial owns its seed, so the split across workers cannot matter.
	cfg1 := mcConfig()
	cfg1.Workers = 1
	cfg8 := mcConfig()
	cfg8.Workers = 8

	a, err := MonteCarlo(nil, goldenInputs(), cfg1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MonteCarlo(nil, goldenInputs(), cfg8)
	if err != nil {
		t.Fatal(err)
	}
	if a.Mean != b.Mean || a.Median != b.Median || a.P25 != b.P25 || a.P75 != b.P75 {
		t.Errorf("worker count changed the summary: %+v vs %+v", a, b)
	}
}

func TestMonteCarloPercentilesOrdered(t *testing.T) {
	s, err := MonteCarlo(nil, goldenInputs(), mcConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s.TrialsUsed+s.TrialsRejected != s.TrialsRequested {
		t.Errorf("trial census broken: %d + %d != %d", s.TrialsUsed, s.TrialsRejected, s.TrialsRequested)
	}
	if !(s.P10 <= s.P25 && s.P25 <= s.P50 && s.P50 <= s.P75 && s.P75 <= s.P90) {
		t.Errorf("percentiles not ordered: %+v", s)
	}
	if s.Median != s.P50 {
		t.Errorf("median %f != P50 %f", s.Median, s.P50)
	}
	if s.StdDev <= 0 {
		t.Errorf("expected positive dispersion, got %f", s.StdDev)
	}
}

func TestMonteCarloFlagsShortRuns(t *testing.T) {
	short, err := MonteCarlo(nil, goldenInputs(), mcConfig())
	if err != nil {
		t.Fatal(err)
	}
	// 2000 trials is under the 10000 floor.
	if !short.BelowRecommendedTrials {
		t.Error("2000-trial run not flagged as below the recommended floor")
	}

	cfg := mcConfig()
	cfg.Trials = recommendedTrials
	full, err := MonteCarlo(nil, goldenInputs(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if full.BelowRecommendedTrials {
		t.Errorf("%d-trial run flagged as short", recommendedTrials)
	}
}

func TestMonteCarloAllRejectedIsFailure(t *testing.T) {
	// Growth drawn far above any achievable discount rate: every trial is
	// rejected and that is a reported failure, not an empty summary.
	cfg := mcConfig()
	cfg.Trials = 50
	cfg.TerminalGrowth = assumption.Distribution{
		Type: assumption.DistUniform, Min: 0.50, Max: 0.60,
	}
	_, err := MonteCarlo(nil, goldenInputs(), cfg)
	if _, ok := errs.AsNumericalFailure(err); !ok {
		t.Fatalf("expected NumericalFailureError, got %v", err)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	// p25 over 5 points: idx = 0.25*4 = 1.0 -> exactly 20
	if v := percentile(sorted, 0.25); math.Abs(v-20) > 1e-12 {
		t.Errorf("p25: expected 20, got %f", v)
	}
	// p90: idx = 0.9*4 = 3.6 -> 40 + 0.6*10 = 46
	if v := percentile(sorted, 0.90); math.Abs(v-46) > 1e-12 {
		t.Errorf("p90: expected 46, got %f", v)
	}
}
