// Package valuation implements the discounted-cash-flow engine: cost of
// capital, terminal value, the two-stage FCFF DCF, and its sensitivity and
// Monte Carlo variants. All functions are pure; results are value types
// constructed once per invocation.
package valuation

import (
	"fmt"

	"mna_valuation/pkg/core/errs"
)

// WACCInputs parameterizes the cost-of-capital calculation.
// When LeveredBeta is zero the unlevered beta is re-levered at the target
// structure via Hamada. When TargetDebtToEquity is zero the current
// structure (net debt / market cap) is used instead.
type WACCInputs struct {
	RiskFreeRate       float64 `json:"risk_free_rate"`
	EquityRiskPremium  float64 `json:"equity_risk_premium"`
	UnleveredBeta      float64 `json:"unlevered_beta,omitempty"`
	LeveredBeta        float64 `json:"levered_beta,omitempty"`
	TargetDebtToEquity float64 `json:"target_debt_to_equity,omitempty"`
	PreTaxCostOfDebt   float64 `json:"pre_tax_cost_of_debt"`
	TaxRate            float64 `json:"tax_rate"`
	MarketCap          float64 `json:"market_cap,omitempty"`
	NetDebt            float64 `json:"net_debt,omitempty"`
}

// WACCResult holds the calculated rates.
type WACCResult struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // after-tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// CalculateWACC computes the weighted average cost of capital using CAPM
// and the Hamada equation.
func CalculateWACC(in WACCInputs) (WACCResult, error) {
	if in.TaxRate < 0 || in.TaxRate >= 1 {
		return WACCResult{}, &errs.InvalidInputError{
			Field:  "tax_rate",
			Reason: fmt.Sprintf("must be in [0, 1), got %g", in.TaxRate),
		}
	}

	de := in.TargetDebtToEquity
	if de == 0 && in.MarketCap > 0 && in.NetDebt > 0 {
		de = in.NetDebt / in.MarketCap
	}
	if de < 0 {
		return WACCResult{}, &errs.InvalidInputError{
			Field:  "target_debt_to_equity",
			Reason: fmt.Sprintf("must be non-negative, got %g", de),
		}
	}

	// Re-lever beta (Hamada): BetaL = BetaU * (1 + (1-t)*(D/E))
	leveredBeta := in.LeveredBeta
	if leveredBeta == 0 {
		leveredBeta = in.UnleveredBeta * (1 + (1-in.TaxRate)*de)
	}

	// Cost of equity (CAPM): Ke = Rf + BetaL * ERP
	ke := in.RiskFreeRate + leveredBeta*in.EquityRiskPremium

	// After-tax cost of debt: Kd = PreTaxKd * (1 - t)
	kd := in.PreTaxCostOfDebt * (1 - in.TaxRate)

	// Weights from D/E = x: Wd = x/(1+x), We = 1/(1+x)
	wd := de / (1 + de)
	we := 1.0 / (1 + de)

	wacc := ke*we + kd*wd
	if wacc <= 0 {
		return WACCResult{}, &errs.InvalidInputError{
			Field:  "wacc",
			Reason: fmt.Sprintf("computed discount rate %g is not positive", wacc),
		}
	}

	return WACCResult{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         wacc,
		WeightDebt:   wd,
		WeightEquity: we,
	}, nil
}
