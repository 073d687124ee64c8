// Package comps implements comparable-company analysis: strict peer
// completeness validation, implied values from trading multiples, and an
// optional regression adjustment for growth and return-on-capital
// differences. The data-quality policy is zero-fallback: an incomplete peer
// is excluded and reported by field name, never defaulted, and no median or
// placeholder is ever substituted for missing data.
package comps

import (
	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
)

// Field names one per-peer datum that can be required for a calculation.
type Field string

const (
	FieldEVRevenue Field = "ev_revenue"
	FieldEVEBITDA  Field = "ev_ebitda"
	FieldPE        Field = "pe"
	FieldGrowth    Field = "growth"
	FieldROIC      Field = "roic"
	FieldMargin    Field = "margin"
)

// PeerMetrics holds one peer's trading multiples and fundamentals.
// Nil means the field was not supplied by ingestion; once data reaches this
// engine no further substitution is permitted.
type PeerMetrics struct {
	Name      string   `json:"name"`
	EVRevenue *float64 `json:"ev_revenue,omitempty"`
	EVEBITDA  *float64 `json:"ev_ebitda,omitempty"`
	PE        *float64 `json:"pe,omitempty"`
	Growth    *float64 `json:"growth,omitempty"`
	ROIC      *float64 `json:"roic,omitempty"`
	Margin    *float64 `json:"margin,omitempty"`
}

func (p PeerMetrics) field(f Field) *float64 {
	switch f {
	case FieldEVRevenue:
		return p.EVRevenue
	case FieldEVEBITDA:
		return p.EVEBITDA
	case FieldPE:
		return p.PE
	case FieldGrowth:
		return p.Growth
	case FieldROIC:
		return p.ROIC
	case FieldMargin:
		return p.Margin
	}
	return nil
}

// PeerSelection is the validated unit the calculations run on: the complete
// peers plus the exclusion report for every rejected candidate.
type PeerSelection struct {
	Peers    []PeerMetrics   `json:"peers"`
	Excluded []errs.FieldGap `json:"excluded,omitempty"`
}

// SelectCompletePeers validates candidates as a unit against the required
// fields. A candidate missing any required field is excluded and logged with
// the specific missing field names. Fewer than minRequired complete peers is
// an InsufficientDataError carrying the full per-peer breakdown.
func SelectCompletePeers(logger *zap.Logger, candidates []PeerMetrics, required []Field, minRequired int) (PeerSelection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minRequired < 1 {
		return PeerSelection{}, &errs.InvalidInputError{Field: "min_required", Reason: "must be at least 1"}
	}
	if len(required) == 0 {
		return PeerSelection{}, &errs.InvalidInputError{Field: "required", Reason: "at least one required field must be named"}
	}

	var sel PeerSelection
	for _, cand := range candidates {
		var missing []string
		for _, f := range required {
			if cand.field(f) == nil {
				missing = append(missing, string(f))
			}
		}
		if len(missing) > 0 {
			sel.Excluded = append(sel.Excluded, errs.FieldGap{Peer: cand.Name, Fields: missing})
			logger.Warn("comps: peer excluded",
				zap.String("peer", cand.Name),
				zap.Strings("missing_fields", missing),
			)
			continue
		}
		sel.Peers = append(sel.Peers, cand)
	}

	if len(sel.Peers) < minRequired {
		return PeerSelection{}, &errs.InsufficientDataError{
			Op:       "comps.select_complete_peers",
			Required: minRequired,
			Got:      len(sel.Peers),
			Missing:  sel.Excluded,
		}
	}
	return sel, nil
}
