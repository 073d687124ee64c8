package suite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mna_valuation/pkg/core/comps"
	"mna_valuation/pkg/core/scenario"
	"mna_valuation/pkg/core/valuation"
)

func fp(v float64) *float64 { return &v }

func fullCase() Case {
	return Case{
		Name: "acme-buyout",
		DCF: &DCFCase{
			Inputs: valuation.DCFInputs{
				FCFF: []float64{100, 108, 115, 122, 130},
				WACC: valuation.WACCInputs{
					RiskFreeRate:      0.03,
					EquityRiskPremium: 0.06,
					LeveredBeta:       1.0,
					PreTaxCostOfDebt:  0.05,
					TaxRate:           0.25,
				},
				Terminal:          valuation.TerminalValueInputs{TerminalGrowth: 0.025},
				SharesOutstanding: 1000,
				NetDebt:           500,
			},
			Sensitivity: &DCFSensitivitySpec{
				Rate:   Range{Low: 0.07, High: 0.11},
				Growth: Range{Low: 0.02, High: 0.03},
				Steps:  3,
			},
		},
		CCA: &CCACase{
			Target: comps.TargetMetrics{
				Revenue: 500, EBITDA: 100, NetIncome: 40,
				NetDebt: 200, SharesOutstanding: 50,
			},
			Candidates: []comps.PeerMetrics{
				{Name: "A", EVEBITDA: fp(7)},
				{Name: "B", EVEBITDA: fp(8)},
				{Name: "C", EVEBITDA: fp(9)},
			},
			Multiples: []comps.MultipleType{comps.MultipleEVEBITDA},
			Required:  []comps.Field{comps.FieldEVEBITDA},
			MinPeers:  3,
		},
		Scenario: &scenario.Inputs{
			BaseRevenue:          1000,
			BaseRetainedEarnings: 200,
			BasePaidInCapital:    300,
			AssetTurnover:        0.8,
			Bear: scenario.Path{
				GrowthPath: []float64{0.00}, MarginPath: []float64{0.08}, NWCPctRevenue: 0.12,
			},
			Base: scenario.Path{
				GrowthPath: []float64{0.03}, MarginPath: []float64{0.10}, NWCPctRevenue: 0.10,
			},
			Bull: scenario.Path{
				GrowthPath: []float64{0.06}, MarginPath: []float64{0.12}, NWCPctRevenue: 0.08,
			},
		},
	}
}

func TestRunExecutesPresentEngines(t *testing.T) {
	res := Run(nil, fullCase())

	require.NotEmpty(t, res.RunID)
	require.Equal(t, "acme-buyout", res.Case)
	require.Empty(t, res.Failures)

	require.NotNil(t, res.DCF)
	require.NotNil(t, res.DCF.Sensitivity)
	require.NotNil(t, res.CCA)
	require.NotNil(t, res.Scenarios)

	// Engines without inputs did not run.
	require.Nil(t, res.LBO)
	require.Nil(t, res.Merger)
}

func TestRunIsolatesEngineFailure(t *testing.T) {
	c := fullCase()
	// Break the DCF only: growth above any achievable rate.
	c.DCF.Inputs.Terminal.TerminalGrowth = 0.50
	c.DCF.Sensitivity = nil

	res := Run(nil, c)

	require.Nil(t, res.DCF)
	require.Len(t, res.Failures, 1)
	require.Equal(t, "dcf", res.Failures[0].Engine)
	require.Contains(t, res.Failures[0].Message, "terminal growth")

	// The other engines still produced results.
	require.NotNil(t, res.CCA)
	require.NotNil(t, res.Scenarios)
}

func TestRunFreshRunIDPerInvocation(t *testing.T) {
	a := Run(nil, fullCase())
	b := Run(nil, fullCase())
	require.NotEqual(t, a.RunID, b.RunID)
}

func TestResultRoundTrip(t *testing.T) {
	res := Run(nil, fullCase())

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var back Result
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, res.RunID, back.RunID)
	require.InDelta(t, res.DCF.SharePrice, back.DCF.SharePrice, 1e-12)
	require.Equal(t, res.Scenarios.Bull.AltmanZ, back.Scenarios.Bull.AltmanZ)
}
