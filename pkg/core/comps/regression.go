package comps

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"mna_valuation/pkg/core/errs"
)

// minRegressionPeers is the hard floor below which no regression runs.
const minRegressionPeers = 3

// RegressionResult carries the OLS fit and the multiple it predicts for the
// target's own fundamentals.
type RegressionResult struct {
	Explained        MultipleType       `json:"explained"`
	Explanatory      []Field            `json:"explanatory"`
	Intercept        float64            `json:"intercept"`
	Coefficients     map[string]float64 `json:"coefficients"`
	R2               float64            `json:"r2"`
	PeerCount        int                `json:"peer_count"`
	AdjustedMultiple float64            `json:"adjusted_multiple"`
	ImpliedPerShare  float64            `json:"implied_per_share"`
}

// RegressionAdjusted regresses the explained multiple on peer fundamentals
// and predicts the target's multiple from its own fundamentals. Fewer than
// three peers complete for every regression field is an
// InsufficientDataError with the per-peer breakdown; a median-based
// substitute is never produced.
func RegressionAdjusted(logger *zap.Logger, target TargetMetrics, candidates []PeerMetrics, explained MultipleType, explanatory []Field) (*RegressionResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(explanatory) == 0 {
		return nil, &errs.InvalidInputError{Field: "explanatory", Reason: "at least one explanatory variable is required"}
	}
	for _, f := range explanatory {
		if _, err := targetFundamental(target, f); err != nil {
			return nil, err
		}
	}

	required := append([]Field{explained.PeerField()}, explanatory...)
	sel, err := SelectCompletePeers(logger, candidates, required, minRegressionPeers)
	if err != nil {
		return nil, err
	}

	n := len(sel.Peers)
	k := len(explanatory)
	if n < k+2 {
		return nil, &errs.InsufficientDataError{
			Op:       "comps.regression_adjusted",
			Required: k + 2,
			Got:      n,
			Missing:  sel.Excluded,
		}
	}

	// Design matrix with an intercept column; least squares via QR.
	X := mat.NewDense(n, k+1, nil)
	y := mat.NewVecDense(n, nil)
	for i, p := range sel.Peers {
		X.Set(i, 0, 1)
		for j, f := range explanatory {
			X.Set(i, j+1, *p.field(f))
		}
		y.SetVec(i, *p.field(explained.PeerField()))
	}

	var beta mat.VecDense
	if err := beta.SolveVec(X, y); err != nil {
		return nil, &errs.NumericalFailureError{
			Op:      "comps.regression_adjusted",
			Methods: []string{"ols_qr"},
			Reason:  "design matrix is rank deficient",
		}
	}

	// R^2 = 1 - SSR/SST over the fitted values.
	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	yMean := stat.Mean(y.RawVector().Data, nil)
	var ssr, sst float64
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		d := y.AtVec(i) - yMean
		ssr += r * r
		sst += d * d
	}
	r2 := 0.0
	if sst > 0 {
		r2 = 1 - ssr/sst
	}

	adjusted := beta.AtVec(0)
	coeffs := make(map[string]float64, k)
	for j, f := range explanatory {
		c := beta.AtVec(j + 1)
		coeffs[string(f)] = c
		tv, _ := targetFundamental(target, f)
		adjusted += c * tv
	}
	if adjusted <= 0 {
		return nil, &errs.NumericalFailureError{
			Op:      "comps.regression_adjusted",
			Methods: []string{"ols_qr"},
			Reason:  fmt.Sprintf("regression predicts a non-positive multiple (%.4f) for the target", adjusted),
		}
	}

	perShare, err := impliedPerShare(target, explained, adjusted)
	if err != nil {
		return nil, err
	}

	logger.Info("comps: regression adjustment applied",
		zap.String("explained", string(explained)),
		zap.Int("peers", n),
		zap.Float64("r2", r2),
		zap.Float64("adjusted_multiple", adjusted),
	)

	return &RegressionResult{
		Explained:        explained,
		Explanatory:      explanatory,
		Intercept:        beta.AtVec(0),
		Coefficients:     coeffs,
		R2:               r2,
		PeerCount:        n,
		AdjustedMultiple: adjusted,
		ImpliedPerShare:  perShare,
	}, nil
}

// targetFundamental resolves the target-side value for an explanatory field.
// Multiples are not fundamentals and cannot explain themselves.
func targetFundamental(t TargetMetrics, f Field) (float64, error) {
	switch f {
	case FieldGrowth:
		return t.Growth, nil
	case FieldROIC:
		return t.ROIC, nil
	case FieldMargin:
		return t.Margin, nil
	default:
		return 0, &errs.InvalidInputError{
			Field:  "explanatory",
			Reason: fmt.Sprintf("%q is not a fundamental; regression explains multiples with growth, roic or margin", f),
		}
	}
}
