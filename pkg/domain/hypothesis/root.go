package hypothesis

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/primitives"
)

// RootHypothesis is one named causal hypothesis under consideration
// (spec §3 "RootHypothesis").
type RootHypothesis struct {
	DisplayID       string
	Statement       string
	ExclusionClause string
	CanonicalID     primitives.CanonicalID

	PLedger decimal.Decimal
	KRoot   decimal.Decimal
	Status  Status

	// Obligations maps template slot key to the Node implementing it.
	ObligationKeys []string
	Obligations    map[string]NodeIndex

	CreditsSpent      int
	ScopingProvenance string

	// StoryCardinality is 1 for a singleton hypothesis, >=2 for a
	// compositional story (spec §3).
	StoryCardinality int
	Components       []string

	// ContenderActive is false once the root has been retired from
	// pair-adjudication (spec §3 "contender retirement flags a root
	// as inactive... but preserves its record").
	ContenderActive bool

	// StickyLockUntilOp supports the pair-adjudication churn-sticky
	// lock (spec §4.9): while the current scheduler operation counter
	// is below this value, this root's active-set membership is
	// pinned even if its p_ledger would otherwise drop it out.
	StickyLockUntilOp int
}

// RequiredSlotsMet reports whether every slot key in required is present
// in Obligations.
func (r *RootHypothesis) RequiredSlotsMet(required []string) bool {
	for _, key := range required {
		if _, ok := r.Obligations[key]; !ok {
			return false
		}
	}
	return true
}

// SortedObligationKeys returns the obligation slot keys in canonical
// (lexicographic) order.
func (r *RootHypothesis) SortedObligationKeys() []string {
	out := make([]string, len(r.ObligationKeys))
	copy(out, r.ObligationKeys)
	return out
}

// SetObligation registers a slot's Node index under key, keeping
// ObligationKeys sorted.
func (r *RootHypothesis) SetObligation(key string, idx NodeIndex) {
	if r.Obligations == nil {
		r.Obligations = make(map[string]NodeIndex)
	}
	if _, exists := r.Obligations[key]; !exists {
		r.ObligationKeys = insertSorted(r.ObligationKeys, key)
	}
	r.Obligations[key] = idx
}
