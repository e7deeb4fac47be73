package adjudication

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/primitives"
)

func TestNewPair_OrdersLexicographically(t *testing.T) {
	p := NewPair("charlie", "alpha")
	if p.Left != "alpha" || p.Right != "charlie" {
		t.Fatalf("got %+v, want Left=alpha Right=charlie", p)
	}
}

func TestPair_KeyIsStableRegardlessOfConstructionOrder(t *testing.T) {
	a := NewPair("x", "y")
	b := NewPair("y", "x")
	if a.Key() != b.Key() {
		t.Fatalf("expected identical keys, got %s vs %s", a.Key(), b.Key())
	}
}

func newRoot(id primitives.CanonicalID, mass float64) *hypothesis.RootHypothesis {
	return &hypothesis.RootHypothesis{
		CanonicalID:     id,
		PLedger:         decimal.NewFromFloat(mass),
		ContenderActive: true,
	}
}

func TestActiveSet_SelectsTopNByMassAboveFloor(t *testing.T) {
	s := hypothesis.NewSet(hypothesis.WorldClosed, nil)
	s.AddRoot(newRoot("a", 0.5))
	s.AddRoot(newRoot("b", 0.3))
	s.AddRoot(newRoot("c", 0.01)) // below mass floor relative to leader
	cfg := config.Defaults()
	cfg.ActiveSetContenderCount = 3
	cfg.ActiveSetMassRatioFloor = decimal.NewFromFloat(0.1)
	cfg.StickyLockEnabled = false

	active := ActiveSet(s, cfg, 0)
	if len(active) != 2 {
		t.Fatalf("expected 2 roots above the mass floor, got %d: %+v", len(active), active)
	}
	if active[0].CanonicalID != "a" || active[1].CanonicalID != "b" {
		t.Fatalf("expected canonical order a, b; got %s, %s", active[0].CanonicalID, active[1].CanonicalID)
	}
}

func TestActiveSet_StickyLockKeepsBelowFloorRootUntilExpiry(t *testing.T) {
	s := hypothesis.NewSet(hypothesis.WorldClosed, nil)
	s.AddRoot(newRoot("a", 0.9))
	locked := newRoot("locked", 0.001)
	locked.StickyLockUntilOp = 5
	s.AddRoot(locked)
	cfg := config.Defaults()
	cfg.ActiveSetContenderCount = 1
	cfg.ActiveSetMassRatioFloor = decimal.NewFromFloat(0.5)
	cfg.StickyLockEnabled = true

	active := ActiveSet(s, cfg, 2)
	found := false
	for _, r := range active {
		if r.CanonicalID == "locked" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sticky-locked root to remain in active set, got %+v", active)
	}
}

func TestCandidatePairs_ExcludesAuthoritativePairs(t *testing.T) {
	q := NewQueue(config.Defaults())
	q.MarkAuthoritative(NewPair("a", "b"))
	active := []*hypothesis.RootHypothesis{newRoot("a", 0.5), newRoot("b", 0.3), newRoot("c", 0.2)}

	pairs := CandidatePairs(active, q)
	for _, p := range pairs {
		if p.Key() == NewPair("a", "b").Key() {
			t.Fatal("expected authoritative pair to be excluded")
		}
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 remaining candidate pairs, got %d: %+v", len(pairs), pairs)
	}
}

func TestSelectTarget_PrefersUntouchedByValue(t *testing.T) {
	q := NewQueue(config.Defaults())
	candidates := []Pair{NewPair("a", "b"), NewPair("a", "c")}
	mass := map[primitives.CanonicalID]decimal.Decimal{
		"a": decimal.NewFromFloat(0.5),
		"b": decimal.NewFromFloat(0.3),
		"c": decimal.NewFromFloat(0.05),
	}
	cfg := config.Defaults()
	cfg.PairAdjudicationPairBudget = 4
	cfg.PairValuePrioritizationEnabled = true

	target, ok, deferred := SelectTarget(candidates, q, mass, cfg)
	if deferred {
		t.Fatal("did not expect deferral")
	}
	if !ok {
		t.Fatal("expected a target to be selected")
	}
	if target.Key() != NewPair("a", "b").Key() {
		t.Fatalf("expected the higher-combined-mass pair a::b, got %s", target.Key())
	}
}

func TestSelectTarget_DefersWhenBudgetExhausted(t *testing.T) {
	q := NewQueue(config.Defaults())
	touched := NewPair("a", "b")
	q.RecordResolution(touched, VerdictUnresolved, 1)

	candidates := []Pair{touched, NewPair("a", "c")}
	cfg := config.Defaults()
	cfg.PairAdjudicationPairBudget = 1

	_, ok, deferred := SelectTarget(candidates, q, nil, cfg)
	if ok {
		t.Fatal("expected no target selected when deferred")
	}
	if !deferred {
		t.Fatal("expected deferral once the distinct-pair budget is reached")
	}
}

func TestSelectTarget_FallsBackToBalanceAmongTouchedPairs(t *testing.T) {
	q := NewQueue(config.Defaults())
	stale := NewPair("a", "b")
	fresh := NewPair("a", "c")
	q.RecordResolution(stale, VerdictUnresolved, 1)
	q.RecordResolution(fresh, VerdictUnresolved, 5)

	cfg := config.Defaults()
	target, ok, deferred := SelectTarget([]Pair{stale, fresh}, q, nil, cfg)
	if deferred || !ok {
		t.Fatalf("expected a selection, got ok=%v deferred=%v", ok, deferred)
	}
	if target.Key() != stale.Key() {
		t.Fatalf("expected the least-recently-touched pair %s, got %s", stale.Key(), target.Key())
	}
}

func TestMissingSideBootstrap(t *testing.T) {
	p := NewPair("a", "b")
	records := map[primitives.CanonicalID]int{"a": 2, "b": 0}
	if !MissingSideBootstrap(p, records) {
		t.Fatal("expected bootstrap to be required when one side has zero records")
	}
	records["b"] = 1
	if MissingSideBootstrap(p, records) {
		t.Fatal("expected no bootstrap once both sides have records")
	}
}

func TestCounterevidenceReservationBlocks(t *testing.T) {
	cfg := config.Defaults()
	cfg.CounterevidenceReservedCredits = 2
	if CounterevidenceReservationBlocks(cfg, 0, 10) {
		t.Fatal("did not expect reservation to block with ample remaining credits")
	}
	if !CounterevidenceReservationBlocks(cfg, 9, 10) {
		t.Fatal("expected reservation to block within the reserved credit margin")
	}
}
