package policy

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
)

// SoftAND blends the min of the children's probabilities with their
// product, weighted by coupling c (spec §4.4): m = c*min(p_i) +
// (1-c)*prod(p_i). Callers substitute p=1.0 for unassessed NEC children
// before calling (spec §4.4 "Unassessed NEC children are treated as
// p=1.0").
func SoftAND(c decimal.Decimal, ps []decimal.Decimal) decimal.Decimal {
	if len(ps) == 0 {
		return decimal.NewFromInt(1)
	}
	min := ps[0]
	product := ps[0]
	for _, p := range ps[1:] {
		if p.LessThan(min) {
			min = p
		}
		product = product.Mul(p)
	}
	return c.Mul(min).Add(decimal.NewFromInt(1).Sub(c).Mul(product))
}

// SoftOR returns the max of the children's probabilities (spec §4.4
// "OR: m = max(p_i)"). Callers exclude EVID children from ps unless the
// policy profile explicitly allows EVID children to raise the parent.
func SoftOR(ps []decimal.Decimal) decimal.Decimal {
	if len(ps) == 0 {
		return decimal.Zero
	}
	max := ps[0]
	for _, p := range ps[1:] {
		if p.GreaterThan(max) {
			max = p
		}
	}
	return max
}

// AggregateSlot computes a slot's probability from its children per
// spec §4.4, given the decomposition type, coupling, and the children's
// probabilities (already substituted for unassessed NEC per the caller).
// allowEvidenceToRaise controls whether EVID children participate in an
// OR aggregation.
func AggregateSlot(decompType hypothesis.DecompositionType, coupling decimal.Decimal, children []ChildContribution, allowEvidenceToRaise bool) decimal.Decimal {
	var ps []decimal.Decimal
	for _, c := range children {
		if c.Role == hypothesis.RoleEVID && decompType == hypothesis.DecompositionOR && !allowEvidenceToRaise {
			continue
		}
		ps = append(ps, c.P)
	}
	switch decompType {
	case hypothesis.DecompositionAND:
		return SoftAND(coupling, ps)
	case hypothesis.DecompositionOR:
		return SoftOR(ps)
	default:
		return decimal.NewFromFloat(0.5)
	}
}

// ChildContribution is one child's role and probability, as seen by
// slot aggregation.
type ChildContribution struct {
	Role hypothesis.Role
	P    decimal.Decimal
}

// RootMultiplier computes m_root, the product over a root's required
// NEC slot probabilities (spec §4.4 "Root multiplier m_root is the
// product over its required NEC slots").
func RootMultiplier(slotPs []decimal.Decimal) decimal.Decimal {
	m := decimal.NewFromInt(1)
	for _, p := range slotPs {
		m = m.Mul(p)
	}
	return m
}

// ProposedP computes p_prop = p_base * m_root, where p_base is the
// current p_ledger at the moment of the update (Option A, spec §4.4 and
// §9's resolution of the p_base Open Question).
func ProposedP(pBase, mRoot decimal.Decimal) decimal.Decimal {
	return pBase.Mul(mRoot)
}
