package policy

import (
	"github.com/shopspring/decimal"
)

// ConservativeDeltaWindow is the maximum |p_new - p_prev| permitted when
// an evaluation returns no evidence identifiers (spec §4.3).
var ConservativeDeltaWindow = decimal.NewFromFloat(0.05)

// ContradictionFloor is the minimum negative penalty a CONTRADICTS
// entailment must impose on the affected slot's p (spec §4.3).
var ContradictionFloor = decimal.NewFromFloat(0.25)

// ApplyConservativeDelta clamps a proposed p to within
// ConservativeDeltaWindow of pPrev when evidenceIDs is empty; with at
// least one evidence id, full movement within [0, 1] is allowed
// (spec §4.3). It returns the resulting p and whether clamping fired.
func ApplyConservativeDelta(pPrev, pProposed decimal.Decimal, evidenceIDs []string) (p decimal.Decimal, enforced bool) {
	if len(evidenceIDs) > 0 {
		return clampUnit(pProposed), false
	}
	delta := pProposed.Sub(pPrev)
	if delta.Abs().LessThanOrEqual(ConservativeDeltaWindow) {
		return clampUnit(pProposed), false
	}
	if delta.IsPositive() {
		return clampUnit(pPrev.Add(ConservativeDeltaWindow)), true
	}
	return clampUnit(pPrev.Sub(ConservativeDeltaWindow)), true
}

// ApplyContradictionFloor enforces a minimum reduction of
// ContradictionFloor on p relative to pPrev when entailment indicates a
// contradiction (spec §4.3). Callers pass the p already produced by
// ApplyConservativeDelta; this function tightens it further if needed.
func ApplyContradictionFloor(pPrev, p decimal.Decimal) (result decimal.Decimal, applied bool) {
	ceiling := pPrev.Sub(ContradictionFloor)
	if p.GreaterThan(ceiling) {
		return clampUnit(ceiling), true
	}
	return clampUnit(p), false
}

func clampUnit(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return p
}
