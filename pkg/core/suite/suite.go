// Package suite runs every valuation engine that a case supplies inputs
// for and collects the results under one run identifier. The engines stay
// fully independent: a failure in one is recorded and the rest still run.
package suite

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mna_valuation/pkg/core/comps"
	"mna_valuation/pkg/core/lbo"
	"mna_valuation/pkg/core/merger"
	"mna_valuation/pkg/core/scenario"
	"mna_valuation/pkg/core/valuation"
)

// Range is one sensitivity axis.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DCFSensitivitySpec requests a discount-rate x terminal-growth grid.
type DCFSensitivitySpec struct {
	Rate   Range `json:"rate"`
	Growth Range `json:"growth"`
	Steps  int   `json:"steps"`
}

// LBOSensitivitySpec requests an exit-multiple x exit-EBITDA IRR grid.
type LBOSensitivitySpec struct {
	ExitMultiple Range `json:"exit_multiple"`
	ExitEBITDA   Range `json:"exit_ebitda"`
	Steps        int   `json:"steps"`
}

// MergerSensitivitySpec requests a premium x stock-mix accretion grid.
type MergerSensitivitySpec struct {
	Premium  Range `json:"premium"`
	StockPct Range `json:"stock_pct"`
	Steps    int   `json:"steps"`
}

// RegressionSpec requests a regression-adjusted multiple on top of the
// median-based comps run.
type RegressionSpec struct {
	Explained   comps.MultipleType `json:"explained"`
	Explanatory []comps.Field      `json:"explanatory"`
}

// DCFCase is the DCF engine's slice of a case.
type DCFCase struct {
	Inputs      valuation.DCFInputs         `json:"inputs"`
	Sensitivity *DCFSensitivitySpec         `json:"sensitivity,omitempty"`
	MonteCarlo  *valuation.MonteCarloConfig `json:"monte_carlo,omitempty"`
}

// CCACase is the comparable-company engine's slice of a case.
type CCACase struct {
	Target     comps.TargetMetrics  `json:"target"`
	Candidates []comps.PeerMetrics  `json:"candidates"`
	Multiples  []comps.MultipleType `json:"multiples"`
	Required   []comps.Field        `json:"required"`
	MinPeers   int                  `json:"min_peers"`
	Options    comps.Options        `json:"options"`
	Regression *RegressionSpec      `json:"regression,omitempty"`
}

// LBOCase is the LBO engine's slice of a case.
type LBOCase struct {
	Inputs      lbo.LBOInputs       `json:"inputs"`
	Sensitivity *LBOSensitivitySpec `json:"sensitivity,omitempty"`
}

// MergerCase is the merger model's slice of a case.
type MergerCase struct {
	Inputs      merger.MergerInputs    `json:"inputs"`
	Sensitivity *MergerSensitivitySpec `json:"sensitivity,omitempty"`
}

// Case is a full valuation case. Every engine block is optional; the suite
// runs exactly the engines whose inputs are present.
type Case struct {
	Name     string           `json:"name"`
	DCF      *DCFCase         `json:"dcf,omitempty"`
	CCA      *CCACase         `json:"cca,omitempty"`
	LBO      *LBOCase         `json:"lbo,omitempty"`
	Merger   *MergerCase      `json:"merger,omitempty"`
	Scenario *scenario.Inputs `json:"scenario,omitempty"`
}

// EngineFailure records one engine's structured error, rendered. The
// orchestrator retried or aborted upstream; here the failure is reported
// alongside whatever the other engines produced.
type EngineFailure struct {
	Engine  string `json:"engine"`
	Message string `json:"message"`
}

// Result collects every engine's output for one run.
type Result struct {
	RunID       string    `json:"run_id"`
	Case        string    `json:"case"`
	GeneratedAt time.Time `json:"generated_at"`

	DCF        *valuation.DCFResult    `json:"dcf,omitempty"`
	CCA        *comps.CCAResult        `json:"cca,omitempty"`
	Regression *comps.RegressionResult `json:"regression,omitempty"`
	LBO        *lbo.LBOResult          `json:"lbo,omitempty"`
	Merger     *merger.MergerResult    `json:"merger,omitempty"`
	Scenarios  *scenario.Comparison    `json:"scenarios,omitempty"`

	Failures []EngineFailure `json:"failures,omitempty"`
}

// Run executes the case. The engines are pure and share no state, so the
// order here is only for log readability.
func Run(logger *zap.Logger, c Case) *Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := &Result{
		RunID:       uuid.NewString(),
		Case:        c.Name,
		GeneratedAt: time.Now().UTC(),
	}
	log := logger.With(zap.String("run_id", res.RunID), zap.String("case", c.Name))

	if c.DCF != nil {
		runDCF(log, c.DCF, res)
	}
	if c.CCA != nil {
		runCCA(log, c.CCA, res)
	}
	if c.LBO != nil {
		runLBO(log, c.LBO, res)
	}
	if c.Merger != nil {
		runMerger(log, c.Merger, res)
	}
	if c.Scenario != nil {
		cmp, err := scenario.CompareScenarios(log, *c.Scenario)
		if err != nil {
			res.fail(log, "scenario", err)
		} else {
			res.Scenarios = cmp
		}
	}

	log.Info("suite: run complete",
		zap.Int("failures", len(res.Failures)),
	)
	return res
}

func (r *Result) fail(logger *zap.Logger, engine string, err error) {
	logger.Warn("suite: engine failed", zap.String("engine", engine), zap.Error(err))
	r.Failures = append(r.Failures, EngineFailure{Engine: engine, Message: err.Error()})
}

func runDCF(logger *zap.Logger, c *DCFCase, res *Result) {
	dcf, err := valuation.Compute(c.Inputs)
	if err != nil {
		res.fail(logger, "dcf", err)
		return
	}
	if s := c.Sensitivity; s != nil {
		g, err := valuation.Sensitivity(c.Inputs, s.Rate.Low, s.Rate.High, s.Growth.Low, s.Growth.High, s.Steps)
		if err != nil {
			res.fail(logger, "dcf.sensitivity", err)
		} else {
			dcf.Sensitivity = g
		}
	}
	if c.MonteCarlo != nil {
		mc, err := valuation.MonteCarlo(logger, c.Inputs, *c.MonteCarlo)
		if err != nil {
			res.fail(logger, "dcf.monte_carlo", err)
		} else {
			dcf.MonteCarlo = mc
		}
	}
	res.DCF = &dcf
}

func runCCA(logger *zap.Logger, c *CCACase, res *Result) {
	sel, err := comps.SelectCompletePeers(logger, c.Candidates, c.Required, c.MinPeers)
	if err != nil {
		res.fail(logger, "cca", err)
		return
	}
	cca, err := comps.Compute(logger, c.Target, sel, c.Multiples, c.Options)
	if err != nil {
		res.fail(logger, "cca", err)
		return
	}
	res.CCA = &cca

	if r := c.Regression; r != nil {
		reg, err := comps.RegressionAdjusted(logger, c.Target, c.Candidates, r.Explained, r.Explanatory)
		if err != nil {
			res.fail(logger, "cca.regression", err)
		} else {
			res.Regression = reg
		}
	}
}

func runLBO(logger *zap.Logger, c *LBOCase, res *Result) {
	out, err := lbo.Compute(logger, c.Inputs)
	if err != nil {
		res.fail(logger, "lbo", err)
		return
	}
	if s := c.Sensitivity; s != nil {
		g, err := lbo.Sensitivity(c.Inputs, s.ExitMultiple.Low, s.ExitMultiple.High, s.ExitEBITDA.Low, s.ExitEBITDA.High, s.Steps)
		if err != nil {
			res.fail(logger, "lbo.sensitivity", err)
		} else {
			out.Sensitivity = g
		}
	}
	res.LBO = out
}

func runMerger(logger *zap.Logger, c *MergerCase, res *Result) {
	out, err := merger.Compute(logger, c.Inputs)
	if err != nil {
		res.fail(logger, "merger", err)
		return
	}
	if s := c.Sensitivity; s != nil {
		g, err := merger.Sensitivity(c.Inputs, s.Premium.Low, s.Premium.High, s.StockPct.Low, s.StockPct.High, s.Steps)
		if err != nil {
			res.fail(logger, "merger.sensitivity", err)
		} else {
			out.Sensitivity = g
		}
	}
	res.Merger = out
}
