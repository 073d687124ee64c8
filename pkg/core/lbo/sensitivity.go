package lbo

import (
	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
	"mna_valuation/pkg/core/grid"
)

// Sensitivity recomputes sponsor IRR across an exit-multiple x exit-EBITDA
// matrix with steps points per axis. Cells whose transaction fails (exit
// equity wiped out, solver exhaustion) stay undefined rather than clamped.
func Sensitivity(base LBOInputs, multipleLow, multipleHigh, ebitdaLow, ebitdaHigh float64, steps int) (*grid.Grid, error) {
	// A zero ExitEBITDA selects the final projected EBITDA, so an axis
	// touching zero would price that cell off a different assumption.
	if ebitdaLow <= 0 {
		return nil, &errs.InvalidInputError{
			Field:  "exit_ebitda",
			Reason: "axis must be strictly positive; zero selects the projected EBITDA instead of an explicit assumption",
		}
	}
	rows, err := grid.Axis(multipleLow, multipleHigh, steps)
	if err != nil {
		return nil, err
	}
	cols, err := grid.Axis(ebitdaLow, ebitdaHigh, steps)
	if err != nil {
		return nil, err
	}

	// Cell computations run quiet; a rejected cell is not an event worth a
	// log line each.
	nop := zap.NewNop()

	g := grid.New("exit_multiple", "exit_ebitda", rows, cols)
	defined := 0
	for i, multiple := range rows {
		for j, ebitda := range cols {
			in := base
			in.Exit.ExitMultiple = multiple
			in.Exit.ExitEBITDA = ebitda
			res, err := Compute(nop, in)
			if err != nil {
				continue
			}
			g.Set(i, j, res.IRR)
			defined++
		}
	}
	if defined == 0 {
		return nil, &errs.InvalidInputError{
			Field:  "range",
			Reason: "no exit-multiple/exit-ebitda pair in the grid produces a solvable transaction",
		}
	}
	return g, nil
}
