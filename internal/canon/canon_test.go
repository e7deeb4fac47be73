package canon

import "testing"

func TestNormalize_CaseFoldsAndCollapsesWhitespace(t *testing.T) {
	got := Normalize("  The   Suspect  Fled.")
	want := "the suspect fled"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalize_StripsTrailingPunctuation(t *testing.T) {
	got := Normalize("It was an accident!!!")
	want := "it was an accident"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCanonicalID_StableAcrossEquivalentPhrasing(t *testing.T) {
	a := CanonicalID("The suspect fled north.")
	b := CanonicalID("  the   SUSPECT fled north")
	if a != b {
		t.Fatalf("expected equivalent phrasing to canonicalize identically: %s != %s", a, b)
	}
}

func TestCanonicalID_DiffersForDifferentStatements(t *testing.T) {
	a := CanonicalID("The suspect fled north.")
	b := CanonicalID("The suspect fled south.")
	if a == b {
		t.Fatal("expected different statements to produce different canonical ids")
	}
}
