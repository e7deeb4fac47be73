// Package scheduler implements the credit-metered operation scheduler
// (spec §4.8, §4.11): leader/frontier selection, canonical ordering of
// candidate operations, DECOMPOSE vs EVALUATE choice under a
// value-of-information heuristic, credit accounting, and the full set
// of stop-condition checks.
package scheduler

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/adjudication"
	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/domain/stopreason"
	"ledgerengine/pkg/primitives"
)

// OpKind distinguishes the two operation types the scheduler may choose
// (spec §4.8 "operation choice").
type OpKind string

const (
	OpDecompose OpKind = "DECOMPOSE"
	OpEvaluate  OpKind = "EVALUATE"
)

// Operation is one candidate unit of work the scheduler may select.
type Operation struct {
	Kind         OpKind
	RootID       primitives.CanonicalID
	SlotKey      string
	NodeIndex    hypothesis.NodeIndex
	Pair         *adjudication.Pair
	VOIEstimate  decimal.Decimal
}

// Ledger tracks credit spend across a session (spec §4.11 "exactly one
// credit per operation").
type Ledger struct {
	Budget int
	Spent  int
}

// Remaining returns the unspent credit balance.
func (l Ledger) Remaining() int { return l.Budget - l.Spent }

// Exhausted reports whether no credit remains.
func (l Ledger) Exhausted() bool { return l.Remaining() <= 0 }

// Spend deducts exactly one credit.
func (l *Ledger) Spend() { l.Spent++ }

// Refund returns exactly one credit. RunSession does not call it: with
// RefundCreditsOnPortFailure set, it skips Spend for the failed
// operation instead.
func (l *Ledger) Refund() {
	if l.Spent > 0 {
		l.Spent--
	}
}

// VOIEstimate scores a candidate operation's expected value of
// information: decompositions on unscoped obligatory slots score
// highest, followed by evaluations of pair-adjudication targets
// weighted by lambda_voi against the pair's combined mass (spec §4.8
// "VOI-lite priority").
func VOIEstimate(op Operation, mass decimal.Decimal, cfg config.Config) decimal.Decimal {
	switch op.Kind {
	case OpDecompose:
		return decimal.NewFromInt(1)
	case OpEvaluate:
		return cfg.LambdaVOI.Mul(mass)
	default:
		return decimal.Zero
	}
}

// ChooseOperation selects the single highest-priority operation from
// candidates, breaking ties by canonical root id and then slot/pair key
// for full determinism (spec §4.8 "canonical ordering").
func ChooseOperation(candidates []Operation) (Operation, bool) {
	if len(candidates) == 0 {
		return Operation{}, false
	}
	sorted := append([]Operation(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.VOIEstimate.Equal(b.VOIEstimate) {
			return a.VOIEstimate.GreaterThan(b.VOIEstimate)
		}
		if a.RootID != b.RootID {
			return a.RootID < b.RootID
		}
		return opTiebreakKey(a) < opTiebreakKey(b)
	})
	return sorted[0], true
}

func opTiebreakKey(op Operation) string {
	if op.Pair != nil {
		return op.Pair.Key()
	}
	return op.SlotKey
}

// ClosureGates are the additional conditions spec §4.11 requires before
// FRONTIER_CONFIDENT may actually fire once every frontier root clears
// k_root >= tau_effective: a minimum winner margin over the runner-up,
// a minimum decomposition depth on every required NEC slot, and, when
// configured, a fully resolved active-set adjudication. When
// confidence is reached but any gate is unmet, the session halts with
// CLOSURE_GATES_UNMET instead.
type ClosureGates struct {
	MinWinnerMargin            decimal.Decimal
	WinnerMargin                decimal.Decimal
	MinDecompositionDepth       int
	ObservedDecompositionDepth int
	ActiveSetAdjudicationRequired bool
	ActiveSetAdjudicationComplete bool
}

func (g ClosureGates) unmet() bool {
	if g.WinnerMargin.LessThan(g.MinWinnerMargin) {
		return true
	}
	if g.ObservedDecompositionDepth < g.MinDecompositionDepth {
		return true
	}
	if g.ActiveSetAdjudicationRequired && !g.ActiveSetAdjudicationComplete {
		return true
	}
	return false
}

// StopCheck evaluates every stop condition in the fixed precedence
// order the spec prescribes (pre-credit gates first, then cancellation,
// then exhaustion, then confidence/closure, then epistemic
// exhaustion; spec §4.11) and returns the first that applies, along
// with whether the session should halt.
type StopCheck struct {
	MECEFailed           bool
	PolicyIncompatible   bool
	ContenderSpaceInvalid bool
	NoLegalOp            bool
	Cancelled            bool
	Ledger               Ledger
	Leader               *hypothesis.RootHypothesis
	Frontier             []*hypothesis.RootHypothesis
	TauEffective         decimal.Decimal
	Closure              ClosureGates
	NoCandidateOperations bool
}

// Evaluate returns the stop reason that applies, if any.
func (s StopCheck) Evaluate() (stopreason.Reason, bool) {
	if s.MECEFailed {
		return stopreason.MECECertificateFailed, true
	}
	if s.PolicyIncompatible {
		return stopreason.PolicyConfigIncompatible, true
	}
	if s.ContenderSpaceInvalid {
		return stopreason.ContenderSpaceInvalid, true
	}
	if s.NoLegalOp {
		return stopreason.NoLegalOp, true
	}
	if s.Cancelled {
		return stopreason.Cancelled, true
	}
	if s.Ledger.Exhausted() {
		return stopreason.CreditsExhausted, true
	}
	if frontierConfident(s.Frontier, s.TauEffective) {
		if s.Closure.unmet() {
			return stopreason.ClosureGatesUnmet, true
		}
		return stopreason.FrontierConfident, true
	}
	if s.NoCandidateOperations {
		return stopreason.EpistemicallyExhausted, true
	}
	return "", false
}

// frontierConfident reports whether every frontier root's k_root has
// reached tau_effective (spec §4.11 "every frontier root has
// k_root >= tau_effective"), rather than comparing the leader's
// probability mass alone.
func frontierConfident(frontier []*hypothesis.RootHypothesis, tauEffective decimal.Decimal) bool {
	if len(frontier) == 0 {
		return false
	}
	for _, r := range frontier {
		if r.KRoot.LessThan(tauEffective) {
			return false
		}
	}
	return true
}

// Selection is the FRONTIER_CONFIDENT dual output (spec §4.11
// "selection and certification outputs"): Selection names the winning
// root; Certified additionally requires the policy/threshold
// compatibility check to have passed without adjustment.
type Selection struct {
	Winner     primitives.CanonicalID
	Certified  bool
}

// BuildSelection derives the dual selection/certification output from
// the leader and whether tau was adjusted (spec §4.11).
func BuildSelection(leader *hypothesis.RootHypothesis, tauAdjusted bool) Selection {
	if leader == nil {
		return Selection{}
	}
	return Selection{Winner: leader.CanonicalID, Certified: !tauAdjusted}
}
