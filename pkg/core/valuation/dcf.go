package valuation

import (
	"fmt"

	"mna_valuation/pkg/core/errs"
	"mna_valuation/pkg/core/grid"
)

// DCFInputs encapsulates all inputs for a two-stage FCFF DCF.
// Cash flows, net debt and shares are in millions.
type DCFInputs struct {
	FCFF              []float64           `json:"fcff"`
	WACC              WACCInputs          `json:"wacc"`
	Terminal          TerminalValueInputs `json:"terminal"`
	SharesOutstanding float64             `json:"shares_outstanding"`
	NetDebt           float64             `json:"net_debt"`
}

// DCFResult holds the valuation outputs. Constructed once per invocation and
// immutable thereafter; sensitivity and Monte Carlo attachments are optional.
type DCFResult struct {
	SharePrice      float64            `json:"share_price"`
	EnterpriseValue float64            `json:"enterprise_value"`
	EquityValue     float64            `json:"equity_value"`
	PVForecast      float64            `json:"pv_forecast"`
	PVTerminal      float64            `json:"pv_terminal"`
	DiscountRate    float64            `json:"discount_rate"`
	Sensitivity     *grid.Grid         `json:"sensitivity,omitempty"`
	MonteCarlo      *MonteCarloSummary `json:"monte_carlo,omitempty"`
}

// Compute performs the standard two-stage DCF: each forecast-year cash flow
// discounted at (1+wacc)^t, terminal value via the configured method
// discounted at the final forecast period, equity value net of debt.
func Compute(in DCFInputs) (DCFResult, error) {
	if err := validateCore(in); err != nil {
		return DCFResult{}, err
	}
	wres, err := CalculateWACC(in.WACC)
	if err != nil {
		return DCFResult{}, err
	}
	return computeAtRate(in, wres.WACC)
}

func validateCore(in DCFInputs) error {
	if len(in.FCFF) == 0 {
		return &errs.InvalidInputError{Field: "fcff", Reason: "forecast must contain at least one period"}
	}
	if in.SharesOutstanding <= 0 {
		return &errs.InvalidInputError{
			Field:  "shares_outstanding",
			Reason: fmt.Sprintf("must be positive, got %g", in.SharesOutstanding),
		}
	}
	return nil
}

// computeAtRate runs the discounting at an already-resolved rate. Shared by
// Compute, Sensitivity and MonteCarlo so every variant prices identically.
func computeAtRate(in DCFInputs, rate float64) (DCFResult, error) {
	tv, err := TerminalValue(in.FCFF[len(in.FCFF)-1], rate, in.Terminal)
	if err != nil {
		return DCFResult{}, err
	}

	discount := 1.0
	var pvForecast float64
	for _, cf := range in.FCFF {
		discount /= 1 + rate
		pvForecast += cf * discount
	}
	pvTerminal := tv * discount

	ev := pvForecast + pvTerminal
	equity := ev - in.NetDebt

	return DCFResult{
		SharePrice:      equity / in.SharesOutstanding,
		EnterpriseValue: ev,
		EquityValue:     equity,
		PVForecast:      pvForecast,
		PVTerminal:      pvTerminal,
		DiscountRate:    rate,
	}, nil
}
