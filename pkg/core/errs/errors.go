// Package errs defines the structured failure taxonomy shared by the
// valuation engines. Engines never catch-and-default: every failure is
// returned as one of these inspectable values so the orchestrator can decide
// to retry with different assumptions, surface the problem, or abort.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidInputError reports an input that fails an engine precondition,
// e.g. WACC not exceeding terminal growth or a malformed forecast.
type InvalidInputError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

// FieldGap names a record (usually a peer) and the required fields it lacks.
type FieldGap struct {
	Peer   string   `json:"peer"`
	Fields []string `json:"fields"`
}

// InsufficientDataError reports an unmet data minimum (peer counts,
// regression sample size). Missing carries the per-record breakdown so a
// caller can render "3 of 8 candidate peers lack EBITDA" without parsing
// the message string.
type InsufficientDataError struct {
	Op       string     `json:"op"`
	Required int        `json:"required"`
	Got      int        `json:"got"`
	Missing  []FieldGap `json:"missing,omitempty"`
}

func (e *InsufficientDataError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d complete records, need >= %d", e.Op, e.Got, e.Required)
	for _, gap := range e.Missing {
		fmt.Fprintf(&b, "; %s missing [%s]", gap.Peer, strings.Join(gap.Fields, ", "))
	}
	return b.String()
}

// NumericalFailureError reports that a numerical routine exhausted every
// fallback method. Methods lists the attempts in the order they were made.
type NumericalFailureError struct {
	Op      string   `json:"op"`
	Methods []string `json:"methods,omitempty"`
	Reason  string   `json:"reason"`
}

func (e *NumericalFailureError) Error() string {
	if len(e.Methods) == 0 {
		return fmt.Sprintf("%s: numerical failure: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: numerical failure after [%s]: %s",
		e.Op, strings.Join(e.Methods, ", "), e.Reason)
}

// ReconciliationError reports a sources-and-uses table that does not balance
// within tolerance. Amounts are in the same unit as the table (millions).
type ReconciliationError struct {
	Sources   float64 `json:"sources"`
	Uses      float64 `json:"uses"`
	Tolerance float64 `json:"tolerance"`
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("sources (%.4f) != uses (%.4f) beyond tolerance %.4g",
		e.Sources, e.Uses, e.Tolerance)
}

// AsInvalidInput unwraps err to an InvalidInputError if one is in the chain.
func AsInvalidInput(err error) (*InvalidInputError, bool) {
	var target *InvalidInputError
	ok := errors.As(err, &target)
	return target, ok
}

// AsInsufficientData unwraps err to an InsufficientDataError.
func AsInsufficientData(err error) (*InsufficientDataError, bool) {
	var target *InsufficientDataError
	ok := errors.As(err, &target)
	return target, ok
}

// AsNumericalFailure unwraps err to a NumericalFailureError.
func AsNumericalFailure(err error) (*NumericalFailureError, bool) {
	var target *NumericalFailureError
	ok := errors.As(err, &target)
	return target, ok
}

// AsReconciliation unwraps err to a ReconciliationError.
func AsReconciliation(err error) (*ReconciliationError, bool) {
	var target *ReconciliationError
	ok := errors.As(err, &target)
	return target, ok
}
