// Package merger models stock-and-cash acquisitions: pro-forma combined
// financials, accretion or dilution to acquirer earnings per share, and a
// deal-structure sensitivity grid over premium and stock mix.
package merger

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
	"mna_valuation/pkg/core/grid"
)

// mixTolerance is the slack allowed when the consideration mix is checked
// against 1.0.
const mixTolerance = 1e-9

// MergerInputs describes the acquirer, the target, and the deal structure.
// The consideration mix fractions must sum to 1. Financial amounts are in
// millions; per-share figures in currency units.
type MergerInputs struct {
	AcquirerNetIncome  float64 `json:"acquirer_net_income"`
	AcquirerShares     float64 `json:"acquirer_shares"`
	AcquirerSharePrice float64 `json:"acquirer_share_price"`
	AcquirerDebt       float64 `json:"acquirer_debt,omitempty"`

	TargetNetIncome  float64 `json:"target_net_income"`
	TargetShares     float64 `json:"target_shares"`
	TargetSharePrice float64 `json:"target_share_price"`
	TargetDebt       float64 `json:"target_debt,omitempty"`

	// Premium is applied to the target share price to form the offer price.
	Premium float64 `json:"premium"`

	// Consideration mix: fraction of the equity purchase price funded by
	// each source.
	CashPct  float64 `json:"cash_pct"`
	StockPct float64 `json:"stock_pct"`
	DebtPct  float64 `json:"debt_pct"`

	// PreTaxSynergies are annual run-rate synergies, taxed at TaxRate.
	PreTaxSynergies float64 `json:"pre_tax_synergies,omitempty"`
	TaxRate         float64 `json:"tax_rate"`

	// DebtRate prices new acquisition debt; CashYield is the after-tax
	// opportunity cost basis of balance-sheet cash spent on the deal.
	DebtRate  float64 `json:"debt_rate,omitempty"`
	CashYield float64 `json:"cash_yield,omitempty"`

	// CombinedEBITDA, when supplied, lets the result carry pro-forma
	// leverage alongside EPS impact.
	CombinedEBITDA float64 `json:"combined_ebitda,omitempty"`
}

// ProFormaResult is the combined entity after the transaction closes.
type ProFormaResult struct {
	OfferPrice          float64 `json:"offer_price"`
	EquityPurchasePrice float64 `json:"equity_purchase_price"`
	CashUsed            float64 `json:"cash_used"`
	StockIssued         float64 `json:"stock_issued"`
	DebtRaised          float64 `json:"debt_raised"`
	NewShares           float64 `json:"new_shares"`
	NetIncome           float64 `json:"net_income"`
	Shares              float64 `json:"shares"`
	EPS                 float64 `json:"eps"`
	Debt                float64 `json:"debt"`
	Leverage            float64 `json:"leverage,omitempty"`
}

// MergerResult is the full deal outcome.
type MergerResult struct {
	ProForma      ProFormaResult `json:"pro_forma"`
	StandaloneEPS float64        `json:"standalone_eps"`
	Accretion     float64        `json:"accretion"`
	Direction     string         `json:"direction"`
	Sensitivity   *grid.Grid     `json:"sensitivity,omitempty"`
}

// Direction values for the EPS impact.
const (
	DirectionAccretive = "accretive"
	DirectionDilutive  = "dilutive"
	DirectionNeutral   = "neutral"
)

func validate(in MergerInputs) error {
	if in.AcquirerShares <= 0 {
		return &errs.InvalidInputError{Field: "acquirer_shares", Reason: "must be positive"}
	}
	if in.AcquirerSharePrice <= 0 {
		return &errs.InvalidInputError{Field: "acquirer_share_price", Reason: "must be positive"}
	}
	if in.TargetShares <= 0 {
		return &errs.InvalidInputError{Field: "target_shares", Reason: "must be positive"}
	}
	if in.TargetSharePrice <= 0 {
		return &errs.InvalidInputError{Field: "target_share_price", Reason: "must be positive"}
	}
	if in.Premium <= -1 {
		return &errs.InvalidInputError{Field: "premium", Reason: "offer price must stay positive"}
	}
	if in.TaxRate < 0 || in.TaxRate >= 1 {
		return &errs.InvalidInputError{Field: "tax_rate", Reason: "must be in [0, 1)"}
	}
	if in.CashPct < 0 || in.StockPct < 0 || in.DebtPct < 0 {
		return &errs.InvalidInputError{Field: "consideration_mix", Reason: "mix fractions must be non-negative"}
	}
	if sum := in.CashPct + in.StockPct + in.DebtPct; math.Abs(sum-1) > mixTolerance {
		return &errs.InvalidInputError{
			Field:  "consideration_mix",
			Reason: fmt.Sprintf("cash + stock + debt must sum to 1, got %g", sum),
		}
	}
	return nil
}

// ProForma combines the two companies under the given deal structure. The
// earnings bridge is: both standalone net incomes, plus after-tax
// synergies, minus after-tax interest on new acquisition debt, minus the
// after-tax yield foregone on cash spent.
func ProForma(logger *zap.Logger, in MergerInputs) (ProFormaResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validate(in); err != nil {
		return ProFormaResult{}, err
	}

	offer := in.TargetSharePrice * (1 + in.Premium)
	purchase := offer * in.TargetShares

	pf := ProFormaResult{
		OfferPrice:          offer,
		EquityPurchasePrice: purchase,
		CashUsed:            purchase * in.CashPct,
		StockIssued:         purchase * in.StockPct,
		DebtRaised:          purchase * in.DebtPct,
	}
	pf.NewShares = pf.StockIssued / in.AcquirerSharePrice
	pf.Shares = in.AcquirerShares + pf.NewShares

	afterTax := 1 - in.TaxRate
	pf.NetIncome = in.AcquirerNetIncome + in.TargetNetIncome +
		in.PreTaxSynergies*afterTax -
		pf.DebtRaised*in.DebtRate*afterTax -
		pf.CashUsed*in.CashYield*afterTax
	pf.EPS = pf.NetIncome / pf.Shares

	pf.Debt = in.AcquirerDebt + in.TargetDebt + pf.DebtRaised
	if in.CombinedEBITDA > 0 {
		pf.Leverage = pf.Debt / in.CombinedEBITDA
	}

	logger.Debug("merger: pro forma combined",
		zap.Float64("offer_price", offer),
		zap.Float64("new_shares", pf.NewShares),
		zap.Float64("pro_forma_eps", pf.EPS),
	)
	return pf, nil
}

// AccretionDilution compares pro-forma EPS to the acquirer's standalone
// EPS and classifies the direction of the impact.
func AccretionDilution(pf ProFormaResult, standaloneEPS float64) (float64, string, error) {
	if standaloneEPS == 0 {
		return 0, "", &errs.InvalidInputError{Field: "standalone_eps", Reason: "must be non-zero"}
	}
	pct := (pf.EPS - standaloneEPS) / standaloneEPS
	switch {
	case pct > 0:
		return pct, DirectionAccretive, nil
	case pct < 0:
		return pct, DirectionDilutive, nil
	default:
		return 0, DirectionNeutral, nil
	}
}

// Compute runs the full merger model.
func Compute(logger *zap.Logger, in MergerInputs) (*MergerResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pf, err := ProForma(logger, in)
	if err != nil {
		return nil, err
	}
	standalone := in.AcquirerNetIncome / in.AcquirerShares
	pct, direction, err := AccretionDilution(pf, standalone)
	if err != nil {
		return nil, err
	}
	logger.Info("merger: accretion/dilution computed",
		zap.Float64("accretion", pct),
		zap.String("direction", direction),
	)
	return &MergerResult{
		ProForma:      pf,
		StandaloneEPS: standalone,
		Accretion:     pct,
		Direction:     direction,
	}, nil
}
