package valuation

import (
	"mna_valuation/pkg/core/errs"
	"mna_valuation/pkg/core/grid"
)

// Sensitivity recomputes per-share value across a discount-rate x
// terminal-growth matrix with steps points per axis. Pairs where the rate
// does not exceed growth stay undefined cells; they are never clamped.
func Sensitivity(base DCFInputs, rateLow, rateHigh, growthLow, growthHigh float64, steps int) (*grid.Grid, error) {
	if err := validateCore(base); err != nil {
		return nil, err
	}
	rows, err := grid.Axis(rateLow, rateHigh, steps)
	if err != nil {
		return nil, err
	}
	cols, err := grid.Axis(growthLow, growthHigh, steps)
	if err != nil {
		return nil, err
	}

	g := grid.New("discount_rate", "terminal_growth", rows, cols)
	defined := 0
	for i, rate := range rows {
		for j, growth := range cols {
			in := base
			in.Terminal.Method = TerminalGordonGrowth
			in.Terminal.TerminalGrowth = growth
			res, err := computeAtRate(in, rate)
			if err != nil {
				continue
			}
			g.Set(i, j, res.SharePrice)
			defined++
		}
	}
	if defined == 0 {
		return nil, &errs.InvalidInputError{
			Field:  "range",
			Reason: "no discount-rate/growth pair in the grid leaves the terminal value defined",
		}
	}
	return g, nil
}
