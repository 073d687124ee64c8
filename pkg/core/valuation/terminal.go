package valuation

import (
	"fmt"

	"mna_valuation/pkg/core/errs"
)

// TerminalMethod selects how value beyond the forecast horizon is
// capitalized.
type TerminalMethod string

const (
	TerminalGordonGrowth TerminalMethod = "gordon_growth"
	TerminalExitMultiple TerminalMethod = "exit_multiple"
)

// TerminalValueInputs parameterizes the terminal value. Method defaults to
// Gordon growth; the exit-multiple alternative capitalizes terminal EBITDA.
type TerminalValueInputs struct {
	Method         TerminalMethod `json:"method,omitempty"`
	TerminalGrowth float64        `json:"terminal_growth"`
	ExitMultiple   float64        `json:"exit_multiple,omitempty"`
	TerminalEBITDA float64        `json:"terminal_ebitda,omitempty"`
}

// TerminalValue capitalizes the final forecast-year cash flow. A discount
// rate at or below terminal growth leaves the perpetuity undefined, so the
// input is rejected rather than clamped.
func TerminalValue(terminalCF, discountRate float64, in TerminalValueInputs) (float64, error) {
	method := in.Method
	if method == "" {
		method = TerminalGordonGrowth
	}
	switch method {
	case TerminalGordonGrowth:
		if discountRate <= in.TerminalGrowth {
			return 0, &errs.InvalidInputError{
				Field: "terminal_growth",
				Reason: fmt.Sprintf("discount rate %.6f must exceed terminal growth %.6f",
					discountRate, in.TerminalGrowth),
			}
		}
		// TV = CF_T * (1+g) / (r - g)
		return terminalCF * (1 + in.TerminalGrowth) / (discountRate - in.TerminalGrowth), nil
	case TerminalExitMultiple:
		if in.ExitMultiple <= 0 {
			return 0, &errs.InvalidInputError{Field: "exit_multiple", Reason: "must be positive"}
		}
		if in.TerminalEBITDA <= 0 {
			return 0, &errs.InvalidInputError{Field: "terminal_ebitda", Reason: "must be positive"}
		}
		return in.ExitMultiple * in.TerminalEBITDA, nil
	default:
		return 0, &errs.InvalidInputError{
			Field:  "method",
			Reason: fmt.Sprintf("unknown terminal method %q", method),
		}
	}
}
