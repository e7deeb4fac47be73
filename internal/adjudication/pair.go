package adjudication

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/primitives"
)

// Pair is an unordered contrastive pair of named roots, keyed
// deterministically (spec §4.9 "pairs are keyed by the two canonical
// ids in sorted order").
type Pair struct {
	Left  primitives.CanonicalID
	Right primitives.CanonicalID
}

// Key returns the deterministic string key for the pair.
func (p Pair) Key() string {
	return string(p.Left) + "::" + string(p.Right)
}

// NewPair orders a and b so the lexicographically smaller id is Left.
func NewPair(a, b primitives.CanonicalID) Pair {
	if a <= b {
		return Pair{Left: a, Right: b}
	}
	return Pair{Left: b, Right: a}
}

// PairState tracks one pair's running adjudication state across
// scheduler operations.
type PairState struct {
	Pair           Pair
	Verdict        Verdict
	RecordCount    int
	LastTouchedOp  int
	Authoritative  bool
}

// Queue is the pair-adjudication queue (spec §4.9): it selects an
// active set of contenders, chooses which pair to target next, and
// enforces the pair budget and counterevidence reservation.
type Queue struct {
	cfg    config.Config
	states map[string]*PairState
}

// NewQueue builds an empty pair-adjudication queue.
func NewQueue(cfg config.Config) *Queue {
	return &Queue{cfg: cfg, states: make(map[string]*PairState)}
}

// State returns the running state for p, creating it if absent.
func (q *Queue) State(p Pair) *PairState {
	st, ok := q.states[p.Key()]
	if !ok {
		st = &PairState{Pair: p}
		q.states[p.Key()] = st
	}
	return st
}

// RecordResolution updates a pair's state after a scheduler operation
// produced new discriminator evidence for it.
func (q *Queue) RecordResolution(p Pair, verdict Verdict, opIndex int) {
	st := q.State(p)
	st.Verdict = verdict
	st.RecordCount++
	st.LastTouchedOp = opIndex
}

// MarkAuthoritative records that this pair has bound its verdict
// authoritatively (spec §4.9 "authoritative pair binding") and is no
// longer subject to re-targeting.
func (q *Queue) MarkAuthoritative(p Pair) {
	q.State(p).Authoritative = true
}

// UnresolvedPairRatio reports the fraction of every tracked pair that
// has not yet bound an authoritative verdict (spec §4.6
// "unresolved_pair_ratio" pressure signal).
func (q *Queue) UnresolvedPairRatio() decimal.Decimal {
	if len(q.states) == 0 {
		return decimal.Zero
	}
	unresolved := 0
	for _, st := range q.states {
		if !st.Authoritative {
			unresolved++
		}
	}
	return decimal.NewFromInt(int64(unresolved)).Div(decimal.NewFromInt(int64(len(q.states))))
}

// ActiveSet selects the contenders eligible for pair-adjudication: the
// top N active roots by p_ledger (N = ActiveSetContenderCount), subject
// to a minimum mass ratio against the leader, with churn-sticky
// locking keeping a previously active root in place until its lock
// expires (spec §4.9 "active-set selection").
func ActiveSet(set *hypothesis.Set, cfg config.Config, opIndex int) []*hypothesis.RootHypothesis {
	all := set.ActiveRoots()
	if len(all) == 0 {
		return nil
	}
	sorted := append([]*hypothesis.RootHypothesis(nil), all...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PLedger.GreaterThan(sorted[j].PLedger)
	})
	leaderMass := sorted[0].PLedger

	selected := make(map[primitives.CanonicalID]bool)
	out := make([]*hypothesis.RootHypothesis, 0, cfg.ActiveSetContenderCount)
	for _, r := range sorted {
		if len(out) >= cfg.ActiveSetContenderCount {
			break
		}
		if meetsMassFloor(r.PLedger, leaderMass, cfg.ActiveSetMassRatioFloor) {
			out = append(out, r)
			selected[r.CanonicalID] = true
		}
	}

	if cfg.StickyLockEnabled {
		for _, r := range sorted {
			if selected[r.CanonicalID] {
				continue
			}
			if r.StickyLockUntilOp > opIndex {
				out = append(out, r)
				selected[r.CanonicalID] = true
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CanonicalID < out[j].CanonicalID })
	return out
}

func meetsMassFloor(mass, leaderMass, floor decimal.Decimal) bool {
	if leaderMass.IsZero() {
		return mass.IsZero()
	}
	return mass.Div(leaderMass).GreaterThanOrEqual(floor)
}

// CandidatePairs enumerates every unordered pair among the active set
// that does not yet have an authoritative binding, in canonical order.
func CandidatePairs(active []*hypothesis.RootHypothesis, q *Queue) []Pair {
	out := make([]Pair, 0, len(active)*(len(active)-1)/2)
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			p := NewPair(active[i].CanonicalID, active[j].CanonicalID)
			if st, ok := q.states[p.Key()]; ok && st.Authoritative {
				continue
			}
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// SelectTarget chooses the next pair to target for adjudication, given
// the candidate pairs and the remaining credit budget. It applies
// value prioritization (favor the pair with the largest combined mass, spec §4.9
// "value prioritization") and balanced targeting (favor pairs touched
// least recently, spec §4.9 "balanced targeting") as tie-breakers, and
// enforces the pair budget cap: once the number of already-targeted
// distinct pairs would exceed PairAdjudicationPairBudget, no new pair
// may be opened (a deferral condition the scheduler reports via audit
// event rather than selecting a pair).
func SelectTarget(candidates []Pair, q *Queue, massByID map[primitives.CanonicalID]decimal.Decimal, cfg config.Config) (Pair, bool, bool) {
	if len(candidates) == 0 {
		return Pair{}, false, false
	}

	distinctTouched := lo.CountBy(lo.Values(q.states), func(st *PairState) bool {
		return st.RecordCount > 0
	})

	touched, untouched := lo.FilterReject(candidates, func(p Pair, _ int) bool {
		st, ok := q.states[p.Key()]
		return ok && st.RecordCount > 0
	})

	if len(untouched) > 0 {
		if distinctTouched >= cfg.PairAdjudicationPairBudget {
			return Pair{}, false, true // deferred: budget cap reached
		}
		best := bestByValue(untouched, massByID, cfg)
		return best, true, false
	}

	if len(touched) == 0 {
		return Pair{}, false, false
	}
	best := bestByBalance(touched, q)
	return best, true, false
}

func bestByValue(candidates []Pair, massByID map[primitives.CanonicalID]decimal.Decimal, cfg config.Config) Pair {
	if !cfg.PairValuePrioritizationEnabled {
		return candidates[0]
	}
	best := candidates[0]
	bestScore := pairValue(best, massByID)
	for _, p := range candidates[1:] {
		score := pairValue(p, massByID)
		if score.GreaterThan(bestScore) {
			best, bestScore = p, score
		}
	}
	return best
}

// pairValue scores a pair by the combined mass of its two members: the
// pairs most likely to move the leader decision are prioritized.
func pairValue(p Pair, massByID map[primitives.CanonicalID]decimal.Decimal) decimal.Decimal {
	return massByID[p.Left].Add(massByID[p.Right])
}

func bestByBalance(candidates []Pair, q *Queue) Pair {
	best := candidates[0]
	bestOp := q.State(best).LastTouchedOp
	for _, p := range candidates[1:] {
		op := q.State(p).LastTouchedOp
		if op < bestOp {
			best, bestOp = p, op
		}
	}
	return best
}

// MissingSideBootstrap reports whether p has zero records for one side,
// meaning the queue should prioritize gathering evidence for the
// under-evidenced root before either side can resolve (spec §4.9
// "missing-side bootstrap").
func MissingSideBootstrap(p Pair, recordsByDirection map[primitives.CanonicalID]int) bool {
	leftCount := recordsByDirection[p.Left]
	rightCount := recordsByDirection[p.Right]
	return leftCount == 0 || rightCount == 0
}

// CounterevidenceReservationBlocks reports whether the counterevidence
// credit reservation blocks further ordinary pair-targeting operations
// at the current credit spend (spec §4.9 "counterevidence reservation
// blocking"). In end_only mode the reservation only binds once the
// session is within the reserved credits of its budget; in any other
// mode the reservation binds for the remainder of the session once
// engaged.
func CounterevidenceReservationBlocks(cfg config.Config, creditsSpent, creditBudget int) bool {
	if cfg.CounterevidenceReservedCredits <= 0 {
		return false
	}
	remaining := creditBudget - creditsSpent
	if cfg.CounterevidenceReservationMode == config.ReservationEndOnly {
		return remaining <= cfg.CounterevidenceReservedCredits
	}
	return remaining <= cfg.CounterevidenceReservedCredits
}
