package scenario

import "math"

// Altman Z-Score cutoffs for the original manufacturing model. Below the
// distress cutoff the logistic probability score crosses one half.
const (
	zDistressCutoff = 1.81
	zLogisticScale  = 1.0
)

// altmanZ scores a scenario's own terminal balance sheet with the original
// manufacturing-firm coefficients:
//
//	Z = 1.2*A + 1.4*B + 3.3*C + 0.6*D + 1.0*E
//
// A = terminal free cash flow / total assets, B = retained earnings / total
// assets, C = EBIT / total assets (terminal operating income stands in for
// EBIT), D = equity / total liabilities (book equity for an unlisted
// projection), E = revenue / total assets, which is the asset-turnover
// assumption.
//
// A deviates from the classic working-capital numerator: the working-capital
// stock here is NWCPctRevenue times revenue, so it grows with the drag
// assumption and would score a heavier drag as healthier. Terminal free cash
// flow is the same liquidity net of the cash the drag absorbs, and it is
// non-increasing in the drag for any ordered assumption set.
func altmanZ(bs TerminalBalanceSheet, terminalEBIT, terminalFCF, assetTurnover float64) float64 {
	a := terminalFCF / bs.TotalAssets
	b := bs.RetainedEarnings / bs.TotalAssets
	c := terminalEBIT / bs.TotalAssets
	d := bs.Equity / bs.TotalLiabilities
	return 1.2*a + 1.4*b + 3.3*c + 0.6*d + 1.0*assetTurnover
}

// bankruptcyProbability maps the Z-Score through a logistic centered on the
// distress cutoff. It is strictly decreasing in Z, so any ordering proved
// for Z carries over to the probability with the direction flipped.
func bankruptcyProbability(z float64) float64 {
	return 1 / (1 + math.Exp((z-zDistressCutoff)/zLogisticScale))
}
