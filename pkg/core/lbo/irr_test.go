package lbo

import (
	"math"
	"testing"
)

func TestSolveIRRConventionalSeries(t *testing.T) {
	// One sign change: Newton must land an NPV within tolerance of zero.
	// -840 now, 2201.2463 in year 5: IRR = (2201.2463/840)^(1/5) - 1
	//                                    = 0.212489
	cfs := []float64{-840, 0, 0, 0, 0, 2201.2463}
	sol, err := SolveIRR(nil, cfs, DefaultSolverConfig)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Method != MethodNewton {
		t.Errorf("expected newton, got %s", sol.Method)
	}
	if math.Abs(sol.Rate-0.212489) > 1e-5 {
		t.Errorf("expected IRR 0.212489, got %f", sol.Rate)
	}
	if v := npv(cfs, sol.Rate); math.Abs(v) > 1e-6 {
		t.Errorf("NPV at solved rate should be ~0, got %g", v)
	}
}

func TestSolveIRRZeroSignChangesIsHoldingPeriod(t *testing.T) {
	// All inflows: no investment round trip, root-finding is ill-posed.
	// The geometric holding-period return is (160/100)^(1/2) - 1 = 0.264911
	sol, err := SolveIRR(nil, []float64{100, 120, 160}, DefaultSolverConfig)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Method != MethodHoldingPeriod {
		t.Fatalf("expected holding_period, got %s", sol.Method)
	}
	if math.Abs(sol.Rate-(math.Sqrt(1.6)-1)) > 1e-9 {
		t.Errorf("expected geometric return %f, got %f", math.Sqrt(1.6)-1, sol.Rate)
	}
}

func TestSolveIRRMultipleSignChangesPrefersMIRR(t *testing.T) {
	// Two sign changes: possible multiple roots, MIRR wins for stability.
	// FV(positives at 8%) = 230*1.08 = 248.4
	// PV(negatives at 8%) = 100 + 132/1.08^2 = 213.168724
	// MIRR = (248.4/213.168724)^(1/2) - 1 = 0.079479
	sol, err := SolveIRR(nil, []float64{-100, 230, -132}, DefaultSolverConfig)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Method != MethodMIRR {
		t.Fatalf("expected mirr, got %s", sol.Method)
	}
	if len(sol.Warnings) == 0 {
		t.Error("multiple sign changes must carry a warning")
	}
	if math.Abs(sol.Rate-0.079479) > 1e-5 {
		t.Errorf("expected MIRR 0.079479, got %f", sol.Rate)
	}
}

func TestSolveIRRBisectionFallback(t *testing.T) {
	// MaxIterations 0 disables Newton outright; the cascade must fall
	// through to bisection and still find the root of
	// -100 + 60/(1+r) + 60/(1+r)^2 = 0 -> r = 0.130662
	cfg := DefaultSolverConfig
	cfg.MaxIterations = 0
	sol, err := SolveIRR(nil, []float64{-100, 60, 60}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Method != MethodBisection {
		t.Fatalf("expected bisection, got %s", sol.Method)
	}
	if math.Abs(sol.Rate-0.130662) > 1e-4 {
		t.Errorf("expected IRR 0.130662, got %f", sol.Rate)
	}
	// The attempt trail records the Newton starts that were tried first.
	var sawNewton bool
	for _, a := range sol.Attempts {
		if a.Method == MethodNewton && a.Converged {
			t.Errorf("no Newton attempt can converge with zero iterations: %+v", a)
		}
		if a.Method == MethodNewton {
			sawNewton = true
		}
	}
	if !sawNewton {
		t.Error("attempt trail must include the failed Newton starts")
	}
}

func TestSolveIRRTooShortSeries(t *testing.T) {
	if _, err := SolveIRR(nil, []float64{-100}, DefaultSolverConfig); err == nil {
		t.Error("expected error for a single-period series")
	}
}

func TestCountSignChanges(t *testing.T) {
	cases := []struct {
		cfs  []float64
		want int
	}{
		{[]float64{-100, 50, 60}, 1},
		{[]float64{100, 120, 160}, 0},
		{[]float64{-100, 230, -132}, 2},
		{[]float64{-100, 0, 0, 50}, 1}, // zeros are not crossings
	}
	for _, tc := range cases {
		if got := countSignChanges(tc.cfs); got != tc.want {
			t.Errorf("%v: expected %d sign changes, got %d", tc.cfs, tc.want, got)
		}
	}
}
