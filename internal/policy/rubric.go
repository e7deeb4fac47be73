// Package policy implements the engine's pure policy functions (spec
// §4.2–§4.6): rubric-to-confidence, conservative delta, soft-AND/OR
// aggregation, damping and absorber enforcement, and dynamic abstention
// mass. Every function here is referentially transparent: same inputs,
// same outputs, no side effects, no clock or randomness.
package policy

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
)

// rubricPoint is one (total, k) anchor of the fixed rubric table
// (spec §4.2).
type rubricPoint struct {
	total int
	k     decimal.Decimal
}

var rubricTable = []rubricPoint{
	{0, decimal.NewFromFloat(0.15)},
	{2, decimal.NewFromFloat(0.35)},
	{4, decimal.NewFromFloat(0.55)},
	{6, decimal.NewFromFloat(0.75)},
	{8, decimal.NewFromFloat(0.90)},
}

// BootstrapK is the rubric table's base k (total score 0), used to
// initialize every root's and every newly decomposed node's k_root /
// k at session bootstrap (spec §4.2, §8 "Bootstrap").
var BootstrapK = rubricTable[0].k

// GuardrailCap is the maximum k permitted when any individual rubric
// score is zero (spec §4.2).
var GuardrailCap = decimal.NewFromFloat(0.55)

// UnscopedChildCap is the maximum parent k permitted when any child of
// a decomposition is UNSCOPED (spec §4.2).
var UnscopedChildCap = decimal.NewFromFloat(0.40)

// RubricToK maps a rubric's total score to a base k via linear
// interpolation over the fixed table, then applies the zero-score
// guardrail (spec §4.2). It returns the resulting k and whether the
// guardrail was triggered.
func RubricToK(r hypothesis.Rubric) (k decimal.Decimal, guardrailed bool) {
	total := r.Total()
	k = interpolate(total)
	if r.HasZeroScore() && k.GreaterThan(GuardrailCap) {
		k = GuardrailCap
		guardrailed = true
	}
	return k, guardrailed
}

func interpolate(total int) decimal.Decimal {
	if total <= rubricTable[0].total {
		return rubricTable[0].k
	}
	last := len(rubricTable) - 1
	if total >= rubricTable[last].total {
		return rubricTable[last].k
	}
	for i := 0; i < last; i++ {
		lo, hi := rubricTable[i], rubricTable[i+1]
		if total >= lo.total && total <= hi.total {
			span := decimal.NewFromInt(int64(hi.total - lo.total))
			frac := decimal.NewFromInt(int64(total - lo.total)).Div(span)
			return lo.k.Add(hi.k.Sub(lo.k).Mul(frac))
		}
	}
	// Unreachable given the table is sorted and covers [0, 8].
	return rubricTable[last].k
}

// ChildK describes one child's confidence and probability for the
// purposes of AND/OR parent-k propagation (spec §4.2).
type ChildK struct {
	CanonicalID string
	P           decimal.Decimal
	K           decimal.Decimal
	Guardrailed bool
	Unscoped    bool
}

// PropagateParentK computes a parent's k from its children under the
// given decomposition type (spec §4.2):
//   - AND: parent k = min child k.
//   - OR: parent k = k of the child with max p (ties broken by
//     canonical id); if the decisive child triggered a guardrail,
//     propagate the guardrail flag.
//   - If any child is UNSCOPED, cap parent k at UnscopedChildCap.
func PropagateParentK(decompType hypothesis.DecompositionType, children []ChildK) (k decimal.Decimal, guardrailed bool) {
	if len(children) == 0 {
		return decimal.Zero, false
	}

	anyUnscoped := false
	for _, c := range children {
		if c.Unscoped {
			anyUnscoped = true
			break
		}
	}

	switch decompType {
	case hypothesis.DecompositionAND:
		k = children[0].K
		guardrailed = children[0].Guardrailed
		for _, c := range children[1:] {
			if c.K.LessThan(k) {
				k = c.K
				guardrailed = c.Guardrailed
			}
		}
	case hypothesis.DecompositionOR:
		decisive := children[0]
		for _, c := range children[1:] {
			if c.P.GreaterThan(decisive.P) ||
				(c.P.Equal(decisive.P) && c.CanonicalID < decisive.CanonicalID) {
				decisive = c
			}
		}
		k = decisive.K
		guardrailed = decisive.Guardrailed
	default:
		return decimal.Zero, false
	}

	if anyUnscoped && k.GreaterThan(UnscopedChildCap) {
		k = UnscopedChildCap
	}
	return k, guardrailed
}
