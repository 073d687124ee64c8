package comps

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"mna_valuation/pkg/core/errs"
)

// MultipleType identifies a trading multiple used for implied value.
type MultipleType string

const (
	MultipleEVRevenue MultipleType = "ev_revenue"
	MultipleEVEBITDA  MultipleType = "ev_ebitda"
	MultiplePE        MultipleType = "pe"
)

// PeerField maps a multiple to the peer field that carries it.
func (m MultipleType) PeerField() Field {
	return Field(m)
}

// TargetMetrics holds the target company's own metrics. The fundamentals
// (growth, ROIC, margin) feed the regression adjustment.
type TargetMetrics struct {
	Revenue           float64 `json:"revenue"`
	EBITDA            float64 `json:"ebitda"`
	NetIncome         float64 `json:"net_income"`
	NetDebt           float64 `json:"net_debt"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Growth            float64 `json:"growth,omitempty"`
	ROIC              float64 `json:"roic,omitempty"`
	Margin            float64 `json:"margin,omitempty"`
}

// OutlierFlag marks a peer whose multiple sits beyond the configured
// z-score. Flagged peers remain in the calculation; dropping them is a
// caller decision that must be made in the open.
type OutlierFlag struct {
	Peer     string       `json:"peer"`
	Multiple MultipleType `json:"multiple"`
	Value    float64      `json:"value"`
	ZScore   float64      `json:"z_score"`
}

// CCAResult holds the implied per-share value by multiple type, the peer
// count actually used, outlier flags, and the regression fit when applied.
type CCAResult struct {
	ImpliedPerShare map[MultipleType]float64 `json:"implied_per_share"`
	PeerCountUsed   int                      `json:"peer_count_used"`
	Outliers        []OutlierFlag            `json:"outliers,omitempty"`
	Regression      *RegressionResult        `json:"regression,omitempty"`
}

// Options tunes the calculation. A zero OutlierZScore means the default.
type Options struct {
	OutlierZScore float64 `json:"outlier_z_score,omitempty"`
}

const defaultOutlierZScore = 3.0

// Compute derives implied per-share value from the median peer multiple for
// each requested type. The selection must already be complete for every
// requested multiple (see SelectCompletePeers); an incomplete peer here is
// an InsufficientDataError, never a silent skip.
func Compute(logger *zap.Logger, target TargetMetrics, sel PeerSelection, types []MultipleType, opts Options) (CCAResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(types) == 0 {
		return CCAResult{}, &errs.InvalidInputError{Field: "multiple_types", Reason: "at least one multiple type is required"}
	}
	if target.SharesOutstanding <= 0 {
		return CCAResult{}, &errs.InvalidInputError{Field: "shares_outstanding", Reason: "must be positive"}
	}
	if len(sel.Peers) == 0 {
		return CCAResult{}, &errs.InsufficientDataError{Op: "comps.compute", Required: 1, Got: 0}
	}

	zThreshold := opts.OutlierZScore
	if zThreshold == 0 {
		zThreshold = defaultOutlierZScore
	}

	res := CCAResult{
		ImpliedPerShare: make(map[MultipleType]float64, len(types)),
		PeerCountUsed:   len(sel.Peers),
	}

	for _, mt := range types {
		values := make([]float64, 0, len(sel.Peers))
		var gaps []errs.FieldGap
		for _, p := range sel.Peers {
			v := p.field(mt.PeerField())
			if v == nil {
				gaps = append(gaps, errs.FieldGap{Peer: p.Name, Fields: []string{string(mt.PeerField())}})
				continue
			}
			values = append(values, *v)
		}
		if len(gaps) > 0 {
			return CCAResult{}, &errs.InsufficientDataError{
				Op:       "comps.compute",
				Required: len(sel.Peers),
				Got:      len(values),
				Missing:  gaps,
			}
		}

		med := median(values)
		if m, sd := stat.Mean(values, nil), stat.StdDev(values, nil); sd > 0 {
			for i, p := range sel.Peers {
				z := (values[i] - m) / sd
				if math.Abs(z) > zThreshold {
					res.Outliers = append(res.Outliers, OutlierFlag{
						Peer:     p.Name,
						Multiple: mt,
						Value:    values[i],
						ZScore:   z,
					})
					logger.Warn("comps: outlier multiple flagged",
						zap.String("peer", p.Name),
						zap.String("multiple", string(mt)),
						zap.Float64("z_score", z),
					)
				}
			}
		}

		perShare, err := impliedPerShare(target, mt, med)
		if err != nil {
			return CCAResult{}, err
		}
		res.ImpliedPerShare[mt] = perShare
	}

	logger.Debug("comps: implied values computed",
		zap.Int("peers_used", res.PeerCountUsed),
		zap.Int("multiples", len(types)),
		zap.Int("outliers_flagged", len(res.Outliers)),
	)
	return res, nil
}

// impliedPerShare maps a multiple level to equity value per target share.
// EV multiples bridge to equity via net debt; P/E is equity-direct.
func impliedPerShare(target TargetMetrics, mt MultipleType, multiple float64) (float64, error) {
	switch mt {
	case MultipleEVRevenue:
		if target.Revenue <= 0 {
			return 0, &errs.InvalidInputError{Field: "revenue", Reason: "must be positive for an EV/Revenue implied value"}
		}
		return (multiple*target.Revenue - target.NetDebt) / target.SharesOutstanding, nil
	case MultipleEVEBITDA:
		if target.EBITDA <= 0 {
			return 0, &errs.InvalidInputError{Field: "ebitda", Reason: "must be positive for an EV/EBITDA implied value"}
		}
		return (multiple*target.EBITDA - target.NetDebt) / target.SharesOutstanding, nil
	case MultiplePE:
		if target.NetIncome <= 0 {
			return 0, &errs.InvalidInputError{Field: "net_income", Reason: "must be positive for a P/E implied value"}
		}
		return multiple * target.NetIncome / target.SharesOutstanding, nil
	default:
		return 0, &errs.InvalidInputError{Field: "multiple_types", Reason: fmt.Sprintf("unknown multiple type %q", mt)}
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
