// Package lbo models leveraged-buyout returns: a sources-and-uses table, a
// projected leveraged capital structure with mandatory amortization and a
// full cash sweep, and sponsor IRR / MOIC solved through a validated
// numerical fallback cascade.
package lbo

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
)

// ReconciliationTolerance is the absolute tolerance (millions) within which
// total sources must equal total uses.
const ReconciliationTolerance = 1e-6

// DebtTranche is sized as a multiple of entry EBITDA, with a fixed rate and
// mandatory amortization expressed as a fraction of original principal per
// year. Tranche order is seniority order: the cash sweep pays the first
// tranche down first, and deficits draw on it as the revolver.
type DebtTranche struct {
	Name           string  `json:"name"`
	EBITDAMultiple float64 `json:"ebitda_multiple"`
	Rate           float64 `json:"rate"`
	Amortization   float64 `json:"amortization,omitempty"`
}

// ExitAssumptions sets the holding period and exit pricing. A zero
// ExitEBITDA means the final projected EBITDA.
type ExitAssumptions struct {
	Year         int     `json:"year"`
	ExitMultiple float64 `json:"exit_multiple"`
	ExitEBITDA   float64 `json:"exit_ebitda,omitempty"`
}

// LBOInputs parameterizes the transaction. Projected series are aligned to
// years 1..N and must cover the holding period. A zero EquityContribution
// means sponsor equity is the derived balancing line of the table.
type LBOInputs struct {
	EntryEBITDA        float64         `json:"entry_ebitda"`
	EntryMultiple      float64         `json:"entry_multiple"`
	Tranches           []DebtTranche   `json:"tranches"`
	EquityContribution float64         `json:"equity_contribution,omitempty"`
	TransactionFeePct  float64         `json:"transaction_fee_pct"`
	ProjectedEBITDA    []float64       `json:"projected_ebitda"`
	ProjectedCapex     []float64       `json:"projected_capex,omitempty"`
	ProjectedChangeNWC []float64       `json:"projected_change_nwc,omitempty"`
	TaxRate            float64         `json:"tax_rate"`
	Exit               ExitAssumptions `json:"exit"`
	Solver             *SolverConfig   `json:"solver,omitempty"`
}

// TrancheFunding is one funded debt line of the table.
type TrancheFunding struct {
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Rate         float64 `json:"rate"`
	Amortization float64 `json:"amortization,omitempty"`
}

// SourcesUses is the reconciled transaction table. EquityDerived records
// whether sponsor equity was the derived line rather than caller-supplied.
type SourcesUses struct {
	EnterpriseValue float64          `json:"enterprise_value"`
	Fees            float64          `json:"fees"`
	TotalUses       float64          `json:"total_uses"`
	Debt            []TrancheFunding `json:"debt"`
	TotalDebt       float64          `json:"total_debt"`
	SponsorEquity   float64          `json:"sponsor_equity"`
	TotalSources    float64          `json:"total_sources"`
	EquityDerived   bool             `json:"equity_derived"`
}

// BuildSourcesUses constructs the table. When the caller supplies an
// explicit equity check the table must balance within
// ReconciliationTolerance; an imbalance is returned as a structured
// ReconciliationError, never papered over with a plug.
func BuildSourcesUses(logger *zap.Logger, in LBOInputs) (SourcesUses, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in.EntryEBITDA <= 0 {
		return SourcesUses{}, &errs.InvalidInputError{Field: "entry_ebitda", Reason: "must be positive"}
	}
	if in.EntryMultiple <= 0 {
		return SourcesUses{}, &errs.InvalidInputError{Field: "entry_multiple", Reason: "must be positive"}
	}
	if in.TransactionFeePct < 0 || in.TransactionFeePct >= 1 {
		return SourcesUses{}, &errs.InvalidInputError{
			Field:  "transaction_fee_pct",
			Reason: fmt.Sprintf("must be in [0, 1), got %g", in.TransactionFeePct),
		}
	}

	ev := in.EntryEBITDA * in.EntryMultiple
	fees := ev * in.TransactionFeePct
	uses := ev + fees

	debt := make([]TrancheFunding, 0, len(in.Tranches))
	var totalDebt float64
	for i, tr := range in.Tranches {
		if tr.EBITDAMultiple < 0 || tr.Rate < 0 || tr.Amortization < 0 || tr.Amortization > 1 {
			return SourcesUses{}, &errs.InvalidInputError{
				Field:  fmt.Sprintf("tranches[%d]", i),
				Reason: "multiple and rate must be non-negative, amortization in [0, 1]",
			}
		}
		amount := tr.EBITDAMultiple * in.EntryEBITDA
		debt = append(debt, TrancheFunding{
			Name:         tr.Name,
			Amount:       amount,
			Rate:         tr.Rate,
			Amortization: tr.Amortization,
		})
		totalDebt += amount
	}

	su := SourcesUses{
		EnterpriseValue: ev,
		Fees:            fees,
		TotalUses:       uses,
		Debt:            debt,
		TotalDebt:       totalDebt,
	}

	if in.EquityContribution > 0 {
		su.SponsorEquity = in.EquityContribution
		su.TotalSources = totalDebt + su.SponsorEquity
		if math.Abs(su.TotalSources-uses) > ReconciliationTolerance {
			return SourcesUses{}, &errs.ReconciliationError{
				Sources:   su.TotalSources,
				Uses:      uses,
				Tolerance: ReconciliationTolerance,
			}
		}
		return su, nil
	}

	equity := uses - totalDebt
	if equity <= 0 {
		return SourcesUses{}, &errs.InvalidInputError{
			Field:  "tranches",
			Reason: fmt.Sprintf("debt %.2f covers total uses %.2f; sponsor equity would be non-positive", totalDebt, uses),
		}
	}
	su.SponsorEquity = equity
	su.TotalSources = totalDebt + equity
	su.EquityDerived = true
	logger.Info("lbo: sponsor equity derived as balancing line",
		zap.Float64("equity", equity),
		zap.Float64("total_uses", uses),
		zap.Float64("total_debt", totalDebt),
	)
	return su, nil
}
