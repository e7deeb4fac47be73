package gates

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/primitives"
)

func TestMECECertificate_PassesWhenAllPairsDeclared(t *testing.T) {
	a := primitives.CanonicalID("a")
	b := primitives.CanonicalID("b")
	overlaps := map[string]PairOverlap{
		PairKey(a, b): {RootA: a, RootB: b, OverlapScore: decimal.NewFromFloat(0.1), Discriminator: "differs by timing"},
	}
	issues := MECECertificate([]primitives.CanonicalID{a, b}, overlaps, decimal.NewFromFloat(0.3))
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestMECECertificate_FlagsMissingPair(t *testing.T) {
	a := primitives.CanonicalID("a")
	b := primitives.CanonicalID("b")
	issues := MECECertificate([]primitives.CanonicalID{a, b}, nil, decimal.NewFromFloat(0.3))
	if len(issues) != 1 || issues[0].Code != "pair_discriminator_missing" {
		t.Fatalf("expected one missing-pair issue, got %+v", issues)
	}
}

func TestMECECertificate_FlagsOverlapExceedingThreshold(t *testing.T) {
	a := primitives.CanonicalID("a")
	b := primitives.CanonicalID("b")
	overlaps := map[string]PairOverlap{
		PairKey(a, b): {RootA: a, RootB: b, OverlapScore: decimal.NewFromFloat(0.5), Discriminator: "x"},
	}
	issues := MECECertificate([]primitives.CanonicalID{a, b}, overlaps, decimal.NewFromFloat(0.3))
	found := false
	for _, issue := range issues {
		if issue.Code == "pair_overlap_exceeds_threshold" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overlap-exceeds issue, got %+v", issues)
	}
}

func TestMECECertificate_FlagsEmptyDiscriminator(t *testing.T) {
	a := primitives.CanonicalID("a")
	b := primitives.CanonicalID("b")
	overlaps := map[string]PairOverlap{
		PairKey(a, b): {RootA: a, RootB: b, OverlapScore: decimal.NewFromFloat(0.1), Discriminator: ""},
	}
	issues := MECECertificate([]primitives.CanonicalID{a, b}, overlaps, decimal.NewFromFloat(0.3))
	found := false
	for _, issue := range issues {
		if issue.Code == "pair_discriminator_empty" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected empty-discriminator issue, got %+v", issues)
	}
}

func TestPairKey_OrderIndependent(t *testing.T) {
	a := primitives.CanonicalID("a")
	b := primitives.CanonicalID("b")
	if PairKey(a, b) != PairKey(b, a) {
		t.Fatal("PairKey should be order-independent")
	}
}
