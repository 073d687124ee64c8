package lbo

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"mna_valuation/pkg/core/errs"
	"mna_valuation/pkg/core/grid"
)

// ScheduleYear is one projected year of the leveraged capital structure.
type ScheduleYear struct {
	Year           int       `json:"year"`
	EBITDA         float64   `json:"ebitda"`
	Interest       float64   `json:"interest"`
	Taxes          float64   `json:"taxes"`
	Capex          float64   `json:"capex"`
	ChangeNWC      float64   `json:"change_nwc"`
	FreeCashFlow   float64   `json:"free_cash_flow"`
	MandatoryAmort float64   `json:"mandatory_amort"`
	CashSweep      float64   `json:"cash_sweep"`
	RevolverDraw   float64   `json:"revolver_draw,omitempty"`
	BeginningDebt  float64   `json:"beginning_debt"`
	EndingDebt     float64   `json:"ending_debt"`
	TrancheEnding  []float64 `json:"tranche_ending"`
}

// LBOResult is the full transaction outcome.
type LBOResult struct {
	SourcesUses         SourcesUses     `json:"sources_uses"`
	Schedule            []ScheduleYear  `json:"schedule"`
	ExitEnterpriseValue float64         `json:"exit_enterprise_value"`
	ExitEquityValue     float64         `json:"exit_equity_value"`
	SponsorCashFlows    []float64       `json:"sponsor_cash_flows"`
	MOIC                float64         `json:"moic"`
	IRR                 float64         `json:"irr"`
	IRRMethod           string          `json:"irr_method"`
	IRRWarnings         []string        `json:"irr_warnings,omitempty"`
	IRRAttempts         []MethodAttempt `json:"irr_attempts,omitempty"`
	Sensitivity         *grid.Grid      `json:"sensitivity,omitempty"`
}

// Compute builds the sources-and-uses table, projects the debt schedule
// over the holding period, and solves sponsor IRR and MOIC.
func Compute(logger *zap.Logger, in LBOInputs) (*LBOResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	su, err := BuildSourcesUses(logger, in)
	if err != nil {
		return nil, err
	}
	return projectReturns(logger, in, su)
}

func projectReturns(logger *zap.Logger, in LBOInputs, su SourcesUses) (*LBOResult, error) {
	years := in.Exit.Year
	if years < 1 {
		return nil, &errs.InvalidInputError{Field: "exit.year", Reason: "holding period must be at least 1 year"}
	}
	if in.Exit.ExitMultiple <= 0 {
		return nil, &errs.InvalidInputError{Field: "exit.exit_multiple", Reason: "must be positive"}
	}
	if len(in.ProjectedEBITDA) < years {
		return nil, &errs.InvalidInputError{
			Field:  "projected_ebitda",
			Reason: fmt.Sprintf("need %d years, got %d", years, len(in.ProjectedEBITDA)),
		}
	}
	if in.TaxRate < 0 || in.TaxRate >= 1 {
		return nil, &errs.InvalidInputError{Field: "tax_rate", Reason: "must be in [0, 1)"}
	}
	if len(in.ProjectedCapex) > 0 && len(in.ProjectedCapex) < years {
		return nil, &errs.InvalidInputError{Field: "projected_capex", Reason: "must cover the holding period when supplied"}
	}
	if len(in.ProjectedChangeNWC) > 0 && len(in.ProjectedChangeNWC) < years {
		return nil, &errs.InvalidInputError{Field: "projected_change_nwc", Reason: "must cover the holding period when supplied"}
	}

	balances := make([]float64, len(su.Debt))
	principal := make([]float64, len(su.Debt))
	for i, tr := range su.Debt {
		balances[i] = tr.Amount
		principal[i] = tr.Amount
	}

	schedule := make([]ScheduleYear, 0, years)
	for y := 1; y <= years; y++ {
		yr := ScheduleYear{Year: y, EBITDA: in.ProjectedEBITDA[y-1]}
		if len(in.ProjectedCapex) > 0 {
			yr.Capex = in.ProjectedCapex[y-1]
		}
		if len(in.ProjectedChangeNWC) > 0 {
			yr.ChangeNWC = in.ProjectedChangeNWC[y-1]
		}

		for i, b := range balances {
			yr.BeginningDebt += b
			yr.Interest += b * su.Debt[i].Rate
		}

		// Capex stands in for D&A in the tax base; the two converge over
		// a steady-state hold and a full depreciation schedule is out of
		// scope for a screening model.
		taxable := yr.EBITDA - yr.Capex - yr.Interest
		if taxable > 0 {
			yr.Taxes = taxable * in.TaxRate
		}

		yr.FreeCashFlow = yr.EBITDA - yr.Capex - yr.ChangeNWC - yr.Interest - yr.Taxes

		// Mandatory amortization is a fraction of original principal,
		// capped at the live balance.
		cash := yr.FreeCashFlow
		for i := range balances {
			amort := math.Min(principal[i]*su.Debt[i].Amortization, balances[i])
			balances[i] -= amort
			yr.MandatoryAmort += amort
			cash -= amort
		}

		if cash >= 0 {
			// Full cash sweep in seniority order.
			for i := range balances {
				if cash <= 0 {
					break
				}
				pay := math.Min(cash, balances[i])
				balances[i] -= pay
				yr.CashSweep += pay
				cash -= pay
			}
		} else {
			// Deficit is drawn on the first tranche, the revolver.
			yr.RevolverDraw = -cash
			balances[0] += yr.RevolverDraw
		}

		yr.TrancheEnding = append(yr.TrancheEnding, balances...)
		for _, b := range balances {
			yr.EndingDebt += b
		}
		schedule = append(schedule, yr)
	}

	exitEBITDA := in.Exit.ExitEBITDA
	if exitEBITDA == 0 {
		exitEBITDA = in.ProjectedEBITDA[years-1]
	}
	endingDebt := schedule[years-1].EndingDebt
	exitEV := exitEBITDA * in.Exit.ExitMultiple
	exitEquity := exitEV - endingDebt
	if exitEquity <= 0 {
		return nil, &errs.NumericalFailureError{
			Op:     "lbo.returns",
			Reason: fmt.Sprintf("exit equity non-positive: exit EV %.2f vs ending debt %.2f", exitEV, endingDebt),
		}
	}

	cfs := make([]float64, years+1)
	cfs[0] = -su.SponsorEquity
	cfs[years] = exitEquity

	solverCfg := DefaultSolverConfig
	if in.Solver != nil {
		solverCfg = *in.Solver
	}
	irr, err := SolveIRR(logger, cfs, solverCfg)
	if err != nil {
		return nil, err
	}

	res := &LBOResult{
		SourcesUses:         su,
		Schedule:            schedule,
		ExitEnterpriseValue: exitEV,
		ExitEquityValue:     exitEquity,
		SponsorCashFlows:    cfs,
		MOIC:                exitEquity / su.SponsorEquity,
		IRR:                 irr.Rate,
		IRRMethod:           irr.Method,
		IRRWarnings:         irr.Warnings,
		IRRAttempts:         irr.Attempts,
	}
	logger.Info("lbo: returns computed",
		zap.Float64("moic", res.MOIC),
		zap.Float64("irr", res.IRR),
		zap.String("irr_method", res.IRRMethod),
		zap.Float64("ending_debt", endingDebt),
	)
	return res, nil
}
