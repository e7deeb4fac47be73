package hypothesis

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/primitives"
)

func TestNewSet_InsertsAbsorbersByWorldMode(t *testing.T) {
	open := NewSet(WorldOpen, nil)
	if open.NOA == nil {
		t.Fatal("expected H_NOA in open-world mode")
	}
	if open.UND == nil {
		t.Fatal("expected H_UND always present")
	}

	closed := NewSet(WorldClosed, nil)
	if closed.NOA != nil {
		t.Fatal("did not expect H_NOA in closed-world mode")
	}
}

func TestAddRoot_KeepsOrderSorted(t *testing.T) {
	s := NewSet(WorldClosed, nil)
	s.AddRoot(&RootHypothesis{CanonicalID: primitives.CanonicalID("charlie")})
	s.AddRoot(&RootHypothesis{CanonicalID: primitives.CanonicalID("alpha")})
	s.AddRoot(&RootHypothesis{CanonicalID: primitives.CanonicalID("bravo")})

	want := []primitives.CanonicalID{"alpha", "bravo", "charlie"}
	if len(s.Order) != len(want) {
		t.Fatalf("got %d roots, want %d", len(s.Order), len(want))
	}
	for i, id := range want {
		if s.Order[i] != id {
			t.Fatalf("Order[%d] = %s, want %s", i, s.Order[i], id)
		}
	}
}

func TestCheckLedgerInvariants_PassesWhenSumIsOne(t *testing.T) {
	s := NewSet(WorldOpen, nil)
	s.AddRoot(&RootHypothesis{CanonicalID: "root-a", PLedger: decimal.NewFromFloat(0.6)})
	s.UND.PLedger = decimal.NewFromFloat(0.3)
	s.NOA.PLedger = decimal.NewFromFloat(0.1)

	if err := s.CheckLedgerInvariants(); err != nil {
		t.Fatalf("unexpected invariant violation: %v", err)
	}
}

func TestCheckLedgerInvariants_FailsOnDrift(t *testing.T) {
	s := NewSet(WorldClosed, nil)
	s.AddRoot(&RootHypothesis{CanonicalID: "root-a", PLedger: decimal.NewFromFloat(0.5)})
	s.UND.PLedger = decimal.NewFromFloat(0.1) // sums to 0.6, not 1.0

	if err := s.CheckLedgerInvariants(); err == nil {
		t.Fatal("expected ledger drift error")
	}
}

func TestLeaderAndFrontier(t *testing.T) {
	s := NewSet(WorldClosed, nil)
	a := &RootHypothesis{CanonicalID: "a", PLedger: decimal.NewFromFloat(0.5), ContenderActive: true}
	b := &RootHypothesis{CanonicalID: "b", PLedger: decimal.NewFromFloat(0.48), ContenderActive: true}
	c := &RootHypothesis{CanonicalID: "c", PLedger: decimal.NewFromFloat(0.02), ContenderActive: true}
	s.AddRoot(a)
	s.AddRoot(b)
	s.AddRoot(c)

	leader := s.Leader()
	if leader.CanonicalID != "a" {
		t.Fatalf("leader = %s, want a", leader.CanonicalID)
	}

	frontier := s.Frontier(leader, decimal.NewFromFloat(0.05))
	if len(frontier) != 2 {
		t.Fatalf("expected 2 roots within epsilon of leader, got %d", len(frontier))
	}
}

func TestActiveRoots_ExcludesRetiredContenders(t *testing.T) {
	s := NewSet(WorldClosed, nil)
	s.AddRoot(&RootHypothesis{CanonicalID: "active", ContenderActive: true})
	s.AddRoot(&RootHypothesis{CanonicalID: "retired", ContenderActive: false})

	active := s.ActiveRoots()
	if len(active) != 1 || active[0].CanonicalID != "active" {
		t.Fatalf("expected only the active contender, got %+v", active)
	}
}
