// Package grid provides the two-axis sensitivity table attached to engine
// results. Cells whose underlying computation is rejected (for example a
// discount-rate / terminal-growth pair with a divergent perpetuity) stay
// marked undefined rather than being clamped to a number.
package grid

import (
	"mna_valuation/pkg/core/errs"
)

// Grid is a row-axis x col-axis matrix of computed values. Values and
// Defined are parallel; an undefined cell holds zero in Values and false in
// Defined so the type stays JSON-safe (no NaN on the wire).
type Grid struct {
	RowLabel string      `json:"row_label"`
	ColLabel string      `json:"col_label"`
	Rows     []float64   `json:"rows"`
	Cols     []float64   `json:"cols"`
	Values   [][]float64 `json:"values"`
	Defined  [][]bool    `json:"defined"`
}

// New allocates a grid with every cell undefined.
func New(rowLabel, colLabel string, rows, cols []float64) *Grid {
	g := &Grid{
		RowLabel: rowLabel,
		ColLabel: colLabel,
		Rows:     rows,
		Cols:     cols,
		Values:   make([][]float64, len(rows)),
		Defined:  make([][]bool, len(rows)),
	}
	for i := range rows {
		g.Values[i] = make([]float64, len(cols))
		g.Defined[i] = make([]bool, len(cols))
	}
	return g
}

// Set records a defined cell value.
func (g *Grid) Set(i, j int, v float64) {
	g.Values[i][j] = v
	g.Defined[i][j] = true
}

// Cell returns the cell value and whether it is defined.
func (g *Grid) Cell(i, j int) (float64, bool) {
	return g.Values[i][j], g.Defined[i][j]
}

// Axis returns steps evenly spaced points from low to high inclusive.
func Axis(low, high float64, steps int) ([]float64, error) {
	if steps < 2 {
		return nil, &errs.InvalidInputError{Field: "steps", Reason: "axis requires at least 2 steps"}
	}
	if low > high {
		return nil, &errs.InvalidInputError{Field: "range", Reason: "axis low exceeds high"}
	}
	pts := make([]float64, steps)
	width := (high - low) / float64(steps-1)
	for i := range pts {
		pts[i] = low + float64(i)*width
	}
	return pts, nil
}
