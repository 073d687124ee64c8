package comps

import (
	"testing"

	"mna_valuation/pkg/core/errs"
)

func fp(v float64) *float64 { return &v }

func TestSelectCompletePeers(t *testing.T) {
	candidates := []PeerMetrics{
		{Name: "ACME", EVEBITDA: fp(8.0), PE: fp(15)},
		{Name: "GLOBEX", EVEBITDA: fp(9.0), PE: fp(16)},
		{Name: "INITECH", PE: fp(14)}, // missing ev_ebitda
		{Name: "UMBRELLA", EVEBITDA: fp(10.0), PE: fp(17)},
	}
	sel, err := SelectCompletePeers(nil, candidates, []Field{FieldEVEBITDA, FieldPE}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Peers) != 3 {
		t.Fatalf("expected 3 complete peers, got %d", len(sel.Peers))
	}
	if len(sel.Excluded) != 1 || sel.Excluded[0].Peer != "INITECH" {
		t.Fatalf("expected INITECH excluded, got %+v", sel.Excluded)
	}
	if len(sel.Excluded[0].Fields) != 1 || sel.Excluded[0].Fields[0] != "ev_ebitda" {
		t.Errorf("exclusion must name the missing field, got %+v", sel.Excluded[0].Fields)
	}
}

func TestSelectCompletePeersBelowMinimum(t *testing.T) {
	candidates := []PeerMetrics{
		{Name: "ACME", EVEBITDA: fp(8.0)},
		{Name: "GLOBEX"}, // missing ev_ebitda
		{Name: "INITECH"},
	}
	_, err := SelectCompletePeers(nil, candidates, []Field{FieldEVEBITDA}, 3)
	ins, ok := errs.AsInsufficientData(err)
	if !ok {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ins.Got != 1 || ins.Required != 3 {
		t.Errorf("expected got=1 required=3, got %+v", ins)
	}
	// Every rejected peer appears in the breakdown with its missing field.
	if len(ins.Missing) != 2 {
		t.Fatalf("expected 2 gaps, got %+v", ins.Missing)
	}
	for _, gap := range ins.Missing {
		if len(gap.Fields) != 1 || gap.Fields[0] != "ev_ebitda" {
			t.Errorf("gap for %s must name ev_ebitda, got %+v", gap.Peer, gap.Fields)
		}
	}
}

func TestSelectCompletePeersEveryFieldReported(t *testing.T) {
	candidates := []PeerMetrics{
		{Name: "HOLLOW"}, // missing both
		{Name: "ACME", EVEBITDA: fp(8.0), Growth: fp(0.05)},
	}
	sel, err := SelectCompletePeers(nil, candidates, []Field{FieldEVEBITDA, FieldGrowth}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Excluded) != 1 || len(sel.Excluded[0].Fields) != 2 {
		t.Fatalf("expected both missing fields listed, got %+v", sel.Excluded)
	}
}
