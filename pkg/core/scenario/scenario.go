// Package scenario projects Bear, Base, and Bull growth regimes to a
// terminal balance sheet and scores each regime's financial distress. The
// three scenarios are numerically independent: every index is computed
// from that scenario's own terminal balance sheet, never from a shared
// baseline, and the Bear <= Base <= Bull ordering is proved at input
// validation and re-checked on the outputs.
package scenario

import (
	"fmt"

	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
)

// Scenario names.
const (
	Bear = "bear"
	Base = "base"
	Bull = "bull"
)

// Path is one scenario's assumption set. GrowthPath and MarginPath are
// aligned per projection year; NWCPctRevenue is the working-capital drag,
// the fraction of revenue tied up as net working capital.
type Path struct {
	GrowthPath    []float64 `json:"growth_path"`
	MarginPath    []float64 `json:"margin_path"`
	NWCPctRevenue float64   `json:"nwc_pct_revenue"`
}

// Inputs holds the shared starting point and the three scenario paths.
type Inputs struct {
	BaseRevenue          float64 `json:"base_revenue"`
	BaseRetainedEarnings float64 `json:"base_retained_earnings"`
	BasePaidInCapital    float64 `json:"base_paid_in_capital"`

	// AssetTurnover converts terminal revenue into terminal total assets.
	AssetTurnover float64 `json:"asset_turnover"`

	Bear Path `json:"bear"`
	Base Path `json:"base"`
	Bull Path `json:"bull"`
}

// TerminalBalanceSheet is the scenario's own end-state balance sheet.
type TerminalBalanceSheet struct {
	Revenue          float64 `json:"revenue"`
	TotalAssets      float64 `json:"total_assets"`
	WorkingCapital   float64 `json:"working_capital"`
	RetainedEarnings float64 `json:"retained_earnings"`
	Equity           float64 `json:"equity"`
	TotalLiabilities float64 `json:"total_liabilities"`
}

// Result is one projected scenario.
type Result struct {
	Scenario        string               `json:"scenario"`
	Revenue         []float64            `json:"revenue"`
	OperatingIncome []float64            `json:"operating_income"`
	FreeCashFlow    []float64            `json:"free_cash_flow"`
	CumulativeFCF   float64              `json:"cumulative_fcf"`
	TerminalFCF     float64              `json:"terminal_fcf"`
	Terminal        TerminalBalanceSheet `json:"terminal"`

	AltmanZ               float64 `json:"altman_z"`
	BankruptcyProbability float64 `json:"bankruptcy_probability"`
}

// Comparison is the cross-checked three-scenario result set.
type Comparison struct {
	Bear *Result `json:"bear"`
	Base *Result `json:"base"`
	Bull *Result `json:"bull"`
}

func validatePath(name string, p Path) error {
	if len(p.GrowthPath) == 0 {
		return &errs.InvalidInputError{Field: name + ".growth_path", Reason: "must be non-empty"}
	}
	if len(p.MarginPath) != len(p.GrowthPath) {
		return &errs.InvalidInputError{
			Field:  name + ".margin_path",
			Reason: fmt.Sprintf("length %d does not match growth path length %d", len(p.MarginPath), len(p.GrowthPath)),
		}
	}
	for t, g := range p.GrowthPath {
		if g <= -1 {
			return &errs.InvalidInputError{
				Field:  name + ".growth_path",
				Reason: fmt.Sprintf("year %d growth %g would eliminate revenue", t+1, g),
			}
		}
	}
	for t, m := range p.MarginPath {
		if m < 0 || m >= 1 {
			return &errs.InvalidInputError{
				Field:  name + ".margin_path",
				Reason: fmt.Sprintf("year %d margin %g outside [0, 1)", t+1, m),
			}
		}
	}
	if p.NWCPctRevenue < 0 || p.NWCPctRevenue >= 1 {
		return &errs.InvalidInputError{Field: name + ".nwc_pct_revenue", Reason: "must be in [0, 1)"}
	}
	return nil
}

// Project applies one scenario's path to the shared starting point.
// Cash generation each year is operating income less the working capital
// absorbed by revenue growth: fcf_t = rev_t * m_t - w * (rev_t - rev_{t-1}).
func Project(logger *zap.Logger, in Inputs, name string, p Path) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in.BaseRevenue <= 0 {
		return nil, &errs.InvalidInputError{Field: "base_revenue", Reason: "must be positive"}
	}
	if in.AssetTurnover <= 0 {
		return nil, &errs.InvalidInputError{Field: "asset_turnover", Reason: "must be positive"}
	}
	if err := validatePath(name, p); err != nil {
		return nil, err
	}

	years := len(p.GrowthPath)
	res := &Result{
		Scenario:        name,
		Revenue:         make([]float64, years),
		OperatingIncome: make([]float64, years),
		FreeCashFlow:    make([]float64, years),
	}

	rev := in.BaseRevenue
	for t := 0; t < years; t++ {
		prev := rev
		rev *= 1 + p.GrowthPath[t]
		oi := rev * p.MarginPath[t]
		fcf := oi - p.NWCPctRevenue*(rev-prev)

		res.Revenue[t] = rev
		res.OperatingIncome[t] = oi
		res.FreeCashFlow[t] = fcf
		res.CumulativeFCF += fcf
	}
	res.TerminalFCF = res.FreeCashFlow[years-1]

	bs := TerminalBalanceSheet{
		Revenue:          rev,
		TotalAssets:      rev / in.AssetTurnover,
		WorkingCapital:   p.NWCPctRevenue * rev,
		RetainedEarnings: in.BaseRetainedEarnings + res.CumulativeFCF,
	}
	bs.Equity = in.BasePaidInCapital + bs.RetainedEarnings
	bs.TotalLiabilities = bs.TotalAssets - bs.Equity
	if bs.TotalLiabilities <= 0 {
		return nil, &errs.InvalidInputError{
			Field: "asset_turnover",
			Reason: fmt.Sprintf("%s: terminal equity %.2f covers total assets %.2f; liability-based distress ratios are undefined",
				name, bs.Equity, bs.TotalAssets),
		}
	}
	res.Terminal = bs

	res.AltmanZ = altmanZ(bs, res.OperatingIncome[years-1], res.TerminalFCF, in.AssetTurnover)
	res.BankruptcyProbability = bankruptcyProbability(res.AltmanZ)

	logger.Debug("scenario: projected",
		zap.String("scenario", name),
		zap.Float64("terminal_fcf", res.TerminalFCF),
		zap.Float64("altman_z", res.AltmanZ),
		zap.Float64("bankruptcy_probability", res.BankruptcyProbability),
	)
	return res, nil
}
