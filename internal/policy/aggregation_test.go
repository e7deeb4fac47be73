package policy

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
)

func TestSoftAND_FullCouplingTakesMin(t *testing.T) {
	ps := []decimal.Decimal{decimal.NewFromFloat(0.9), decimal.NewFromFloat(0.4)}
	got := SoftAND(decimal.NewFromInt(1), ps)
	if !got.Equal(decimal.NewFromFloat(0.4)) {
		t.Fatalf("got %s, want 0.4", got)
	}
}

func TestSoftAND_ZeroCouplingTakesProduct(t *testing.T) {
	ps := []decimal.Decimal{decimal.NewFromFloat(0.5), decimal.NewFromFloat(0.5)}
	got := SoftAND(decimal.Zero, ps)
	if !got.Equal(decimal.NewFromFloat(0.25)) {
		t.Fatalf("got %s, want 0.25", got)
	}
}

func TestSoftOR_TakesMax(t *testing.T) {
	ps := []decimal.Decimal{decimal.NewFromFloat(0.2), decimal.NewFromFloat(0.7), decimal.NewFromFloat(0.5)}
	got := SoftOR(ps)
	if !got.Equal(decimal.NewFromFloat(0.7)) {
		t.Fatalf("got %s, want 0.7", got)
	}
}

func TestAggregateSlot_ORExcludesEvidenceByDefault(t *testing.T) {
	children := []ChildContribution{
		{Role: hypothesis.RoleNEC, P: decimal.NewFromFloat(0.3)},
		{Role: hypothesis.RoleEVID, P: decimal.NewFromFloat(0.9)},
	}
	got := AggregateSlot(hypothesis.DecompositionOR, decimal.Zero, children, false)
	if !got.Equal(decimal.NewFromFloat(0.3)) {
		t.Fatalf("got %s, want 0.3 (EVID excluded)", got)
	}
}

func TestAggregateSlot_ORIncludesEvidenceWhenAllowed(t *testing.T) {
	children := []ChildContribution{
		{Role: hypothesis.RoleNEC, P: decimal.NewFromFloat(0.3)},
		{Role: hypothesis.RoleEVID, P: decimal.NewFromFloat(0.9)},
	}
	got := AggregateSlot(hypothesis.DecompositionOR, decimal.Zero, children, true)
	if !got.Equal(decimal.NewFromFloat(0.9)) {
		t.Fatalf("got %s, want 0.9", got)
	}
}

func TestRootMultiplier_ProductOfSlots(t *testing.T) {
	got := RootMultiplier([]decimal.Decimal{decimal.NewFromFloat(0.8), decimal.NewFromFloat(0.5)})
	if !got.Equal(decimal.NewFromFloat(0.4)) {
		t.Fatalf("got %s, want 0.4", got)
	}
}

func TestProposedP(t *testing.T) {
	got := ProposedP(decimal.NewFromFloat(0.6), decimal.NewFromFloat(0.5))
	if !got.Equal(decimal.NewFromFloat(0.3)) {
		t.Fatalf("got %s, want 0.3", got)
	}
}
