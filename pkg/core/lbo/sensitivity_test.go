package lbo

import (
	"testing"

	"mna_valuation/pkg/core/errs"
)

func TestSensitivityIRRRisesWithExitMultiple(t *testing.T) {
	g, err := Sensitivity(baseDeal(), 8, 12, 270, 320, 3)
	if err != nil {
		t.Fatal(err)
	}
	// A richer exit multiple at fixed exit EBITDA can only help the
	// sponsor.
	for j := range g.Cols {
		prev := -1.0
		for i := range g.Rows {
			v, ok := g.Cell(i, j)
			if !ok {
				t.Fatalf("cell (%d,%d) unexpectedly undefined", i, j)
			}
			if v <= prev {
				t.Errorf("col %d: IRR %f did not rise above %f", j, v, prev)
			}
			prev = v
		}
	}
}

func TestSensitivityRejectsZeroEBITDAAxis(t *testing.T) {
	// ExitEBITDA zero is the projected-EBITDA default; an axis spanning
	// zero would silently swap assumptions for that cell, so the whole
	// axis must be rejected up front.
	_, err := Sensitivity(baseDeal(), 8, 12, 0, 320, 5)
	inv, ok := errs.AsInvalidInput(err)
	if !ok {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if inv.Field != "exit_ebitda" {
		t.Errorf("expected exit_ebitda field, got %q", inv.Field)
	}

	_, err = Sensitivity(baseDeal(), 8, 12, -50, 320, 5)
	if _, ok := errs.AsInvalidInput(err); !ok {
		t.Fatalf("expected InvalidInputError for a negative axis, got %v", err)
	}
}

func TestSensitivitySkipsUnderwaterCells(t *testing.T) {
	// Exit multiples of 1-2x against ~737 of ending debt wipe the equity
	// at the low end of the EBITDA axis; those cells stay undefined.
	g, err := Sensitivity(baseDeal(), 1, 12, 270, 320, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Cell(0, 0); ok {
		t.Error("1x exit against the debt load should be undefined")
	}
	if _, ok := g.Cell(len(g.Rows)-1, len(g.Cols)-1); !ok {
		t.Error("12x exit should be defined")
	}
}
