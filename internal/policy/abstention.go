package policy

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/config"
)

// AbstentionInputs are the four pressure signals the dynamic abstention
// mass is computed from (spec §4.6).
type AbstentionInputs struct {
	UnresolvedPairRatio     decimal.Decimal
	ContradictionDensity    decimal.Decimal
	NonDiscriminativeDensity decimal.Decimal
	FrameAdequacyScore      decimal.Decimal
}

// ComputeDynamicAbstentionMass computes the H_UND mass from a linear
// weighted combination of the four pressure signals, clamped to
// [min, max] (spec §4.6). The result replaces the fixed H_UND floor
// when dynamic abstention is enabled.
func ComputeDynamicAbstentionMass(weights config.DynamicAbstentionWeights, in AbstentionInputs, min, max decimal.Decimal) decimal.Decimal {
	mass := weights.UnresolvedPairRatio.Mul(in.UnresolvedPairRatio).
		Add(weights.ContradictionDensity.Mul(in.ContradictionDensity)).
		Add(weights.NonDiscriminativeDensity.Mul(in.NonDiscriminativeDensity)).
		Add(weights.FrameAdequacy.Mul(in.FrameAdequacyScore))

	if mass.LessThan(min) {
		return min
	}
	if mass.GreaterThan(max) {
		return max
	}
	return mass
}
