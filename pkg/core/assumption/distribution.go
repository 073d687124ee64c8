// Package assumption holds the configurable sampling assumptions that feed
// the Monte Carlo engines. Distribution shapes and parameters are inputs
// supplied with the case, never hard-coded constants.
package assumption

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"mna_valuation/pkg/core/errs"
)

// DistributionType identifies the sampling distribution family.
type DistributionType string

const (
	DistNormal     DistributionType = "normal"
	DistLognormal  DistributionType = "lognormal"
	DistUniform    DistributionType = "uniform"
	DistTriangular DistributionType = "triangular"
)

// Distribution describes one sampled model input.
//
// Normal uses Mean/Std. Lognormal uses Mean/Std as the location and scale of
// the underlying normal. Uniform uses Min/Max. Triangular uses Min/Max/Mode.
type Distribution struct {
	Type DistributionType `json:"type"`
	Mean float64          `json:"mean,omitempty"`
	Std  float64          `json:"std,omitempty"`
	Min  float64          `json:"min,omitempty"`
	Max  float64          `json:"max,omitempty"`
	Mode float64          `json:"mode,omitempty"`
}

// Validate rejects parameterizations the sampler cannot honor.
func (d Distribution) Validate() error {
	switch d.Type {
	case DistNormal, DistLognormal:
		if d.Std <= 0 {
			return &errs.InvalidInputError{
				Field:  "std",
				Reason: fmt.Sprintf("%s distribution requires std > 0, got %g", d.Type, d.Std),
			}
		}
	case DistUniform:
		if d.Min >= d.Max {
			return &errs.InvalidInputError{
				Field:  "min",
				Reason: fmt.Sprintf("uniform distribution requires min < max, got [%g, %g]", d.Min, d.Max),
			}
		}
	case DistTriangular:
		if d.Min >= d.Max {
			return &errs.InvalidInputError{
				Field:  "min",
				Reason: fmt.Sprintf("triangular distribution requires min < max, got [%g, %g]", d.Min, d.Max),
			}
		}
		if d.Mode < d.Min || d.Mode > d.Max {
			return &errs.InvalidInputError{
				Field:  "mode",
				Reason: fmt.Sprintf("triangular mode %g outside [%g, %g]", d.Mode, d.Min, d.Max),
			}
		}
	default:
		return &errs.InvalidInputError{
			Field:  "type",
			Reason: fmt.Sprintf("unknown distribution type %q", d.Type),
		}
	}
	return nil
}

// Sampler binds the distribution to a random source. Callers own the source
// so that trial-level seeding stays deterministic regardless of scheduling.
func (d Distribution) Sampler(src rand.Source) (distuv.Rander, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch d.Type {
	case DistNormal:
		return distuv.Normal{Mu: d.Mean, Sigma: d.Std, Src: src}, nil
	case DistLognormal:
		return distuv.LogNormal{Mu: d.Mean, Sigma: d.Std, Src: src}, nil
	case DistUniform:
		return distuv.Uniform{Min: d.Min, Max: d.Max, Src: src}, nil
	default:
		return distuv.NewTriangle(d.Min, d.Max, d.Mode, src), nil
	}
}
