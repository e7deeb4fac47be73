package gates

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
)

func TestContenderSpace_PassesTriviallyInSingletonMode(t *testing.T) {
	roots := []*hypothesis.RootHypothesis{{CanonicalID: "a"}}
	if issues := ContenderSpace(roots, false); len(issues) != 0 {
		t.Fatalf("expected no issues in singleton mode, got %+v", issues)
	}
}

func TestContenderSpace_FlagsMissingComponentsInCompositionalMode(t *testing.T) {
	roots := []*hypothesis.RootHypothesis{
		{CanonicalID: "a", Components: []string{"x"}},
		{CanonicalID: "b"},
	}
	issues := ContenderSpace(roots, true)
	if len(issues) != 1 || issues[0].RootA != "b" {
		t.Fatalf("expected one issue for root b, got %+v", issues)
	}
}

func TestFrameAdequacyScore_ClampsAtCap(t *testing.T) {
	got := FrameAdequacyScore(9, 10, decimal.NewFromFloat(0.8))
	if !got.Equal(decimal.NewFromFloat(0.8)) {
		t.Fatalf("got %s, want 0.8 (clamped)", got)
	}
}

func TestFrameAdequacyScore_NoRequiredSlotsReturnsCap(t *testing.T) {
	got := FrameAdequacyScore(0, 0, decimal.NewFromFloat(0.9))
	if !got.Equal(decimal.NewFromFloat(0.9)) {
		t.Fatalf("got %s, want 0.9", got)
	}
}

func TestMeetsFrameAdequacy(t *testing.T) {
	if !MeetsFrameAdequacy(decimal.NewFromFloat(0.9), decimal.NewFromFloat(0.8)) {
		t.Fatal("expected 0.9 to meet an 0.8 threshold")
	}
	if MeetsFrameAdequacy(decimal.NewFromFloat(0.7), decimal.NewFromFloat(0.8)) {
		t.Fatal("expected 0.7 to fail an 0.8 threshold")
	}
}
