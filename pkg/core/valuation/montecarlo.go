package valuation

import (
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"mna_valuation/pkg/core/assumption"
	"mna_valuation/pkg/core/errs"
)

// MonteCarloConfig drives the uncertainty simulation. The three sampled
// inputs are drawn independently per trial from the configured
// distributions; shapes and parameters come with the case, not from code.
type MonteCarloConfig struct {
	Trials         int                     `json:"trials"`
	Seed           uint64                  `json:"seed"`
	Workers        int                     `json:"workers,omitempty"`
	RiskFreeRate   assumption.Distribution `json:"risk_free_rate"`
	Beta           assumption.Distribution `json:"beta"`
	TerminalGrowth assumption.Distribution `json:"terminal_growth"`
}

// recommendedTrials is the floor below which the percentile estimates are
// too noisy to quote. Short runs are allowed but carry a flag.
const recommendedTrials = 10000

// MonteCarloSummary reports the per-share value distribution across trials.
// Trials whose sampled pair leaves the perpetuity undefined are rejected and
// counted; the summary covers the surviving trials only.
type MonteCarloSummary struct {
	TrialsRequested        int     `json:"trials_requested"`
	TrialsUsed             int     `json:"trials_used"`
	TrialsRejected         int     `json:"trials_rejected"`
	BelowRecommendedTrials bool    `json:"below_recommended_trials,omitempty"`
	Seed                   uint64  `json:"seed"`
	Mean                   float64 `json:"mean"`
	Median                 float64 `json:"median"`
	StdDev                 float64 `json:"std_dev"`
	P10                    float64 `json:"p10"`
	P25                    float64 `json:"p25"`
	P50                    float64 `json:"p50"`
	P75                    float64 `json:"p75"`
	P90                    float64 `json:"p90"`
}

// MonteCarlo recomputes the full DCF per trial with risk-free rate, levered
// beta and terminal growth drawn from the configured distributions. Each
// trial is seeded individually (Seed + trial index), so the summary is
// identical for any worker count. Rejected trials are counted, never
// resampled into a different answer.
func MonteCarlo(logger *zap.Logger, base DCFInputs, cfg MonteCarloConfig) (*MonteCarloSummary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Trials < 1 {
		return nil, &errs.InvalidInputError{Field: "trials", Reason: "must run at least one trial"}
	}
	if err := validateCore(base); err != nil {
		return nil, err
	}
	for _, d := range []assumption.Distribution{cfg.RiskFreeRate, cfg.Beta, cfg.TerminalGrowth} {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	// NaN marks a rejected trial until the final census.
	outcomes := make([]float64, cfg.Trials)

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error {
			for trial := w; trial < cfg.Trials; trial += workers {
				v, err := runTrial(base, cfg, uint64(trial))
				if err != nil {
					return err
				}
				outcomes[trial] = v
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	valid := make([]float64, 0, cfg.Trials)
	for _, v := range outcomes {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, &errs.NumericalFailureError{
			Op:     "dcf.monte_carlo",
			Reason: "every trial drew a discount-rate/growth pair with an undefined terminal value",
		}
	}

	if cfg.Trials < recommendedTrials {
		logger.Warn("dcf: monte carlo trial count below the recommended floor",
			zap.Int("trials", cfg.Trials),
			zap.Int("recommended", recommendedTrials),
		)
	}

	sort.Float64s(valid)
	summary := &MonteCarloSummary{
		TrialsRequested:        cfg.Trials,
		TrialsUsed:             len(valid),
		TrialsRejected:         cfg.Trials - len(valid),
		BelowRecommendedTrials: cfg.Trials < recommendedTrials,
		Seed:                   cfg.Seed,
		Mean:                   mean(valid),
		Median:                 percentile(valid, 0.50),
		StdDev:                 stddev(valid),
		P10:                    percentile(valid, 0.10),
		P25:                    percentile(valid, 0.25),
		P50:                    percentile(valid, 0.50),
		P75:                    percentile(valid, 0.75),
		P90:                    percentile(valid, 0.90),
	}

	logger.Debug("dcf: monte carlo complete",
		zap.Int("trials_used", summary.TrialsUsed),
		zap.Int("trials_rejected", summary.TrialsRejected),
		zap.Uint64("seed", cfg.Seed),
	)
	return summary, nil
}

// runTrial draws one sample set and reprices. The draw order (risk-free,
// beta, growth) is fixed; changing it changes results for a given seed.
func runTrial(base DCFInputs, cfg MonteCarloConfig, trial uint64) (float64, error) {
	src := rand.NewSource(cfg.Seed + trial)

	rfDist, err := cfg.RiskFreeRate.Sampler(src)
	if err != nil {
		return 0, err
	}
	betaDist, err := cfg.Beta.Sampler(src)
	if err != nil {
		return 0, err
	}
	growthDist, err := cfg.TerminalGrowth.Sampler(src)
	if err != nil {
		return 0, err
	}

	in := base
	in.WACC.RiskFreeRate = rfDist.Rand()
	in.WACC.LeveredBeta = betaDist.Rand()
	in.Terminal.Method = TerminalGordonGrowth
	in.Terminal.TerminalGrowth = growthDist.Rand()

	wres, err := CalculateWACC(in.WACC)
	if err != nil {
		return math.NaN(), nil
	}
	res, err := computeAtRate(in, wres.WACC)
	if err != nil {
		return math.NaN(), nil
	}
	return res.SharePrice, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// percentile uses linear interpolation over a pre-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
