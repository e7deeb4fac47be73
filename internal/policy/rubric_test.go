package policy

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
)

func TestRubricToK_Anchors(t *testing.T) {
	cases := []struct {
		rubric hypothesis.Rubric
		want   string
	}{
		{hypothesis.Rubric{0, 0, 0, 0}, "0.15"},
		{hypothesis.Rubric{2, 2, 2, 2}, "0.9"},
	}
	for _, c := range cases {
		k, _ := RubricToK(c.rubric)
		want, _ := decimal.NewFromString(c.want)
		if !k.Equal(want) {
			t.Errorf("RubricToK(%+v) = %s, want %s", c.rubric, k, want)
		}
	}
}

func TestRubricToK_GuardrailTriggersOnZeroScore(t *testing.T) {
	r := hypothesis.Rubric{A: 0, B: 2, C: 2, D: 2}
	k, guardrailed := RubricToK(r)
	if !guardrailed {
		t.Fatal("expected guardrail to trigger when a score is zero")
	}
	if k.GreaterThan(GuardrailCap) {
		t.Fatalf("k = %s exceeds guardrail cap %s", k, GuardrailCap)
	}
}

func TestRubricToK_Interpolates(t *testing.T) {
	r := hypothesis.Rubric{A: 1, B: 1, C: 1, D: 0}
	k, _ := RubricToK(r)
	lower := decimal.NewFromFloat(0.35)
	upper := decimal.NewFromFloat(0.55)
	if k.LessThan(lower) || k.GreaterThan(upper) {
		t.Fatalf("k = %s not within [%s, %s] for total 3", k, lower, upper)
	}
}

func TestPropagateParentK_AND_TakesMinChildK(t *testing.T) {
	children := []ChildK{
		{CanonicalID: "a", P: decimal.NewFromFloat(0.9), K: decimal.NewFromFloat(0.9)},
		{CanonicalID: "b", P: decimal.NewFromFloat(0.5), K: decimal.NewFromFloat(0.3)},
	}
	k, _ := PropagateParentK(hypothesis.DecompositionAND, children)
	if !k.Equal(decimal.NewFromFloat(0.3)) {
		t.Fatalf("AND propagation = %s, want 0.3", k)
	}
}

func TestPropagateParentK_OR_TakesDecisiveChildByMaxP(t *testing.T) {
	children := []ChildK{
		{CanonicalID: "a", P: decimal.NewFromFloat(0.4), K: decimal.NewFromFloat(0.2)},
		{CanonicalID: "b", P: decimal.NewFromFloat(0.8), K: decimal.NewFromFloat(0.6)},
	}
	k, _ := PropagateParentK(hypothesis.DecompositionOR, children)
	if !k.Equal(decimal.NewFromFloat(0.6)) {
		t.Fatalf("OR propagation = %s, want 0.6 (from decisive max-p child)", k)
	}
}

func TestPropagateParentK_UnscopedChildCapsParent(t *testing.T) {
	children := []ChildK{
		{CanonicalID: "a", P: decimal.NewFromFloat(0.9), K: decimal.NewFromFloat(0.9), Unscoped: true},
	}
	k, _ := PropagateParentK(hypothesis.DecompositionAND, children)
	if k.GreaterThan(UnscopedChildCap) {
		t.Fatalf("k = %s exceeds unscoped child cap %s", k, UnscopedChildCap)
	}
}
