package valuation

import (
	"math"
	"testing"

	"mna_valuation/pkg/core/errs"
)

// goldenInputs pins WACC at exactly 9%: Rf 3% + levered beta 1.0 * ERP 6%,
// all-equity structure.
func goldenInputs() DCFInputs {
	return DCFInputs{
		FCFF: []float64{100, 108, 115, 122, 130},
		WACC: WACCInputs{
			RiskFreeRate:      0.03,
			EquityRiskPremium: 0.06,
			LeveredBeta:       1.0,
			PreTaxCostOfDebt:  0.05,
			TaxRate:           0.25,
		},
		Terminal:          TerminalValueInputs{TerminalGrowth: 0.025},
		SharesOutstanding: 1000,
		NetDebt:           500,
	}
}

func TestComputeGolden(t *testing.T) {
	// PV forecast = 100/1.09 + 108/1.09^2 + 115/1.09^3 + 122/1.09^4 + 130/1.09^5
	//             = 442.364615
	// TV = 130*1.025/(0.09-0.025) = 2050 exactly
	// PV(TV) = 2050/1.09^5 = 1332.359342
	// EV = 1774.723957, equity = 1274.723957, per share = 1.274724
	res, err := Compute(goldenInputs())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.DiscountRate-0.09) > 1e-12 {
		t.Fatalf("expected discount rate 0.09, got %f", res.DiscountRate)
	}
	if math.Abs(res.PVForecast-442.364615) > 1e-4 {
		t.Errorf("expected PV forecast 442.364615, got %f", res.PVForecast)
	}
	if math.Abs(res.PVTerminal-1332.359342) > 1e-4 {
		t.Errorf("expected PV terminal 1332.359342, got %f", res.PVTerminal)
	}
	if math.Abs(res.EnterpriseValue-1774.723957) > 1e-4 {
		t.Errorf("expected EV 1774.723957, got %f", res.EnterpriseValue)
	}
	if math.Abs(res.EquityValue-1274.723957) > 1e-4 {
		t.Errorf("expected equity 1274.723957, got %f", res.EquityValue)
	}
	if math.Abs(res.SharePrice-1.274724) > 1e-6 {
		t.Errorf("expected per share 1.274724, got %f", res.SharePrice)
	}
}

func TestEnterpriseValueDecreasesInWACC(t *testing.T) {
	in := goldenInputs()
	prev := math.Inf(1)
	for _, beta := range []float64{0.8, 1.0, 1.2, 1.5, 2.0} {
		in.WACC.LeveredBeta = beta
		res, err := Compute(in)
		if err != nil {
			t.Fatalf("beta %f: %v", beta, err)
		}
		if res.EnterpriseValue <= 0 {
			t.Fatalf("beta %f: EV %f not positive", beta, res.EnterpriseValue)
		}
		if res.EnterpriseValue >= prev {
			t.Fatalf("beta %f: EV %f did not decrease from %f", beta, res.EnterpriseValue, prev)
		}
		prev = res.EnterpriseValue
	}
}

func TestComputeRejectsRateBelowGrowth(t *testing.T) {
	in := goldenInputs()
	in.Terminal.TerminalGrowth = 0.10 // above the 9% discount rate
	_, err := Compute(in)
	if _, ok := errs.AsInvalidInput(err); !ok {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}

func TestTerminalExitMultiple(t *testing.T) {
	// 8x on terminal EBITDA 250 = 2000, regardless of growth
	tv, err := TerminalValue(130, 0.09, TerminalValueInputs{
		Method:         TerminalExitMultiple,
		ExitMultiple:   8,
		TerminalEBITDA: 250,
	})
	if err != nil {
		t.Fatal(err)
	}
	if tv != 2000 {
		t.Errorf("expected terminal value 2000, got %f", tv)
	}
}
