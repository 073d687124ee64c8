package merger

import (
	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
	"mna_valuation/pkg/core/grid"
)

// Sensitivity recomputes accretion/dilution across a premium x stock-mix
// matrix with steps points per axis. As the stock fraction moves, the
// remainder of the consideration is split between cash and debt in the
// base inputs' cash-to-debt proportion so the mix keeps summing to 1.
// Cells whose deal fails validation stay undefined.
func Sensitivity(base MergerInputs, premiumLow, premiumHigh, stockLow, stockHigh float64, steps int) (*grid.Grid, error) {
	if err := validate(base); err != nil {
		return nil, err
	}
	rows, err := grid.Axis(premiumLow, premiumHigh, steps)
	if err != nil {
		return nil, err
	}
	cols, err := grid.Axis(stockLow, stockHigh, steps)
	if err != nil {
		return nil, err
	}

	cashShare := 0.5
	if rest := base.CashPct + base.DebtPct; rest > 0 {
		cashShare = base.CashPct / rest
	}

	nop := zap.NewNop()
	g := grid.New("premium", "stock_pct", rows, cols)
	defined := 0
	for i, premium := range rows {
		for j, stock := range cols {
			if stock < 0 || stock > 1 {
				continue
			}
			in := base
			in.Premium = premium
			in.StockPct = stock
			in.CashPct = (1 - stock) * cashShare
			in.DebtPct = 1 - stock - in.CashPct
			res, err := Compute(nop, in)
			if err != nil {
				continue
			}
			g.Set(i, j, res.Accretion)
			defined++
		}
	}
	if defined == 0 {
		return nil, &errs.InvalidInputError{
			Field:  "range",
			Reason: "no premium/stock-mix pair in the grid yields a valid deal",
		}
	}
	return g, nil
}
