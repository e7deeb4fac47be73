package policy

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyConservativeDelta_NoEvidenceClampsMovement(t *testing.T) {
	pPrev := decimal.NewFromFloat(0.5)
	pProposed := decimal.NewFromFloat(0.9)
	got, enforced := ApplyConservativeDelta(pPrev, pProposed, nil)
	if !enforced {
		t.Fatal("expected conservative delta to fire with no evidence ids")
	}
	want := pPrev.Add(ConservativeDeltaWindow)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestApplyConservativeDelta_WithEvidenceAllowsFullMovement(t *testing.T) {
	pPrev := decimal.NewFromFloat(0.1)
	pProposed := decimal.NewFromFloat(0.95)
	got, enforced := ApplyConservativeDelta(pPrev, pProposed, []string{"ev-1"})
	if enforced {
		t.Fatal("did not expect conservative delta to fire with evidence ids present")
	}
	if !got.Equal(pProposed) {
		t.Fatalf("got %s, want %s", got, pProposed)
	}
}

func TestApplyConservativeDelta_WithinWindowPassesThrough(t *testing.T) {
	pPrev := decimal.NewFromFloat(0.5)
	pProposed := decimal.NewFromFloat(0.52)
	got, enforced := ApplyConservativeDelta(pPrev, pProposed, nil)
	if enforced {
		t.Fatal("did not expect clamping within the window")
	}
	if !got.Equal(pProposed) {
		t.Fatalf("got %s, want %s", got, pProposed)
	}
}

func TestApplyContradictionFloor_EnforcesMinimumReduction(t *testing.T) {
	pPrev := decimal.NewFromFloat(0.8)
	p := decimal.NewFromFloat(0.7) // only a 0.1 drop, less than the 0.25 floor
	got, applied := ApplyContradictionFloor(pPrev, p)
	if !applied {
		t.Fatal("expected contradiction floor to apply")
	}
	want := pPrev.Sub(ContradictionFloor)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestApplyContradictionFloor_NoOpWhenAlreadyBelowFloor(t *testing.T) {
	pPrev := decimal.NewFromFloat(0.8)
	p := decimal.NewFromFloat(0.4)
	got, applied := ApplyContradictionFloor(pPrev, p)
	if applied {
		t.Fatal("did not expect contradiction floor to apply")
	}
	if !got.Equal(p) {
		t.Fatalf("got %s, want %s", got, p)
	}
}
