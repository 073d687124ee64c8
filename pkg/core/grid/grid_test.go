package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mna_valuation/pkg/core/errs"
)

func TestAxis(t *testing.T) {
	// 5 steps from 0.07 to 0.11 -> width 0.01
	pts, err := Axis(0.07, 0.11, 5)
	require.NoError(t, err)
	require.Len(t, pts, 5)
	require.InDelta(t, 0.07, pts[0], 1e-12)
	require.InDelta(t, 0.09, pts[2], 1e-12)
	require.InDelta(t, 0.11, pts[4], 1e-12)
}

func TestAxisRejectsDegenerate(t *testing.T) {
	_, err := Axis(0.07, 0.11, 1)
	var inv *errs.InvalidInputError
	require.ErrorAs(t, err, &inv)

	_, err = Axis(0.11, 0.07, 3)
	require.ErrorAs(t, err, &inv)
}

func TestUndefinedCellsSurviveRoundTrip(t *testing.T) {
	g := New("rate", "growth", []float64{0.08, 0.09}, []float64{0.02, 0.03})
	g.Set(0, 1, 12.5)

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var back Grid
	require.NoError(t, json.Unmarshal(raw, &back))

	v, ok := back.Cell(0, 1)
	require.True(t, ok)
	require.InDelta(t, 12.5, v, 1e-12)

	// The undefined cell comes back undefined, not as a zero that looks
	// like a real value.
	_, ok = back.Cell(1, 0)
	require.False(t, ok)
}
