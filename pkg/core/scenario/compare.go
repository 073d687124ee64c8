package scenario

import (
	"fmt"

	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
)

// orderingSlack absorbs float rounding in the cross-scenario comparisons.
const orderingSlack = 1e-9

// CompareScenarios projects all three scenarios and enforces the
// Bear <= Base <= Bull ordering: the per-year inputs are validated so the
// free-cash-flow ordering is provable before any projection runs, the
// derived balance-sheet ratios feeding the Z-Score are validated so every
// score term is ordered, and the produced terminal FCF and distress indices
// are cross-checked afterwards. An output violation is a NumericalFailure,
// never a silent reorder.
func CompareScenarios(logger *zap.Logger, in Inputs) (*Comparison, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateOrdering(in); err != nil {
		return nil, err
	}

	bear, err := Project(logger, in, Bear, in.Bear)
	if err != nil {
		return nil, err
	}
	base, err := Project(logger, in, Base, in.Base)
	if err != nil {
		return nil, err
	}
	bull, err := Project(logger, in, Bull, in.Bull)
	if err != nil {
		return nil, err
	}

	if err := validateBalanceRatios(bear, base, bull); err != nil {
		return nil, err
	}

	cmp := &Comparison{Bear: bear, Base: base, Bull: bull}
	if err := cmp.checkOutputs(); err != nil {
		return nil, err
	}
	logger.Info("scenario: comparison ordered",
		zap.Float64("bear_terminal_fcf", bear.TerminalFCF),
		zap.Float64("base_terminal_fcf", base.TerminalFCF),
		zap.Float64("bull_terminal_fcf", bull.TerminalFCF),
	)
	return cmp, nil
}

// validateOrdering proves the terminal FCF ordering from the inputs alone.
// With a shared base revenue, fcf_t factors as rev_t * c_t where
// c_t = m_t - w * g_t / (1 + g_t) is the effective cash margin. Ordered
// growth makes rev_t ordered; requiring c_t ordered and non-negative for
// every year then orders each year's FCF, so no parameter combination can
// pass validation and still produce an inverted projection.
func validateOrdering(in Inputs) error {
	years := len(in.Base.GrowthPath)
	if len(in.Bear.GrowthPath) != years || len(in.Bull.GrowthPath) != years {
		return &errs.InvalidInputError{
			Field:  "growth_path",
			Reason: "bear, base, and bull paths must cover the same horizon",
		}
	}
	if !(in.Bear.NWCPctRevenue >= in.Base.NWCPctRevenue && in.Base.NWCPctRevenue >= in.Bull.NWCPctRevenue) {
		return &errs.InvalidInputError{
			Field:  "nwc_pct_revenue",
			Reason: "working-capital drag must be ordered bear >= base >= bull",
		}
	}

	for t := 0; t < years; t++ {
		gBear, gBase, gBull := in.Bear.GrowthPath[t], in.Base.GrowthPath[t], in.Bull.GrowthPath[t]
		if !(gBear <= gBase && gBase <= gBull) {
			return &errs.InvalidInputError{
				Field:  "growth_path",
				Reason: fmt.Sprintf("year %d growth not ordered bear <= base <= bull", t+1),
			}
		}
		if t < len(in.Bear.MarginPath) && t < len(in.Base.MarginPath) && t < len(in.Bull.MarginPath) {
			mBear, mBase, mBull := in.Bear.MarginPath[t], in.Base.MarginPath[t], in.Bull.MarginPath[t]
			if !(mBear <= mBase && mBase <= mBull) {
				return &errs.InvalidInputError{
					Field:  "margin_path",
					Reason: fmt.Sprintf("year %d margin not ordered bear <= base <= bull", t+1),
				}
			}
			cBear := cashMargin(mBear, in.Bear.NWCPctRevenue, gBear)
			cBase := cashMargin(mBase, in.Base.NWCPctRevenue, gBase)
			cBull := cashMargin(mBull, in.Bull.NWCPctRevenue, gBull)
			if cBear < 0 {
				return &errs.InvalidInputError{
					Field:  "bear",
					Reason: fmt.Sprintf("year %d working-capital drag exceeds the operating margin; cash margin is negative", t+1),
				}
			}
			if !(cBear <= cBase+orderingSlack && cBase <= cBull+orderingSlack) {
				return &errs.InvalidInputError{
					Field:  "margin_path",
					Reason: fmt.Sprintf("year %d effective cash margin not ordered bear <= base <= bull", t+1),
				}
			}
		}
	}
	return nil
}

// cashMargin is fcf_t / rev_t: the operating margin net of the working
// capital absorbed per unit of revenue at growth g.
func cashMargin(m, w, g float64) float64 {
	return m - w*g/(1+g)
}

// validateBalanceRatios orders the two Z-Score inputs that depend on the
// starting balance sheet as well as the paths. The liquidity, profitability,
// and turnover ratios are ordered by validateOrdering alone, but retained
// earnings and leverage divide path-ordered absolutes by scenario-specific
// asset bases: a large starting retained-earnings or paid-in-capital balance
// against widely dispersed growth can invert them. That is an assumption
// conflict, reported against the inputs, so every term of the Z-Score is
// ordered for any input set that clears validation.
func validateBalanceRatios(bear, base, bull *Result) error {
	type ratio struct {
		field, name      string
		bear, base, bull float64
	}
	ratios := []ratio{
		{
			"base_retained_earnings", "retained earnings to assets",
			bear.Terminal.RetainedEarnings / bear.Terminal.TotalAssets,
			base.Terminal.RetainedEarnings / base.Terminal.TotalAssets,
			bull.Terminal.RetainedEarnings / bull.Terminal.TotalAssets,
		},
		{
			"base_paid_in_capital", "equity to liabilities",
			bear.Terminal.Equity / bear.Terminal.TotalLiabilities,
			base.Terminal.Equity / base.Terminal.TotalLiabilities,
			bull.Terminal.Equity / bull.Terminal.TotalLiabilities,
		},
	}
	for _, r := range ratios {
		if !(r.bear <= r.base+orderingSlack && r.base <= r.bull+orderingSlack) {
			return &errs.InvalidInputError{
				Field: r.field,
				Reason: fmt.Sprintf("terminal %s ratio not ordered bear <= base <= bull (%.6f, %.6f, %.6f); the starting balance outweighs the growth dispersion",
					r.name, r.bear, r.base, r.bull),
			}
		}
	}
	return nil
}

// checkOutputs re-verifies the produced ordering. Every Z-Score term is
// individually ordered once validateOrdering and validateBalanceRatios pass,
// so this is a consistency backstop rather than the primary guarantee.
func (c *Comparison) checkOutputs() error {
	type check struct {
		name             string
		bear, base, bull float64
		ascending        bool
	}
	checks := []check{
		{"terminal_fcf", c.Bear.TerminalFCF, c.Base.TerminalFCF, c.Bull.TerminalFCF, true},
		{"altman_z", c.Bear.AltmanZ, c.Base.AltmanZ, c.Bull.AltmanZ, true},
		{"bankruptcy_probability", c.Bear.BankruptcyProbability, c.Base.BankruptcyProbability, c.Bull.BankruptcyProbability, false},
	}
	for _, ck := range checks {
		lo, mid, hi := ck.bear, ck.base, ck.bull
		if !ck.ascending {
			lo, hi = hi, lo
		}
		if !(lo <= mid+orderingSlack && mid <= hi+orderingSlack) {
			return &errs.NumericalFailureError{
				Op: "scenario.compare",
				Reason: fmt.Sprintf("%s ordering violated: bear %.6f, base %.6f, bull %.6f",
					ck.name, ck.bear, ck.base, ck.bull),
			}
		}
	}
	return nil
}
