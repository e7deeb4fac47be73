// Package adjudication implements the pair-adjudication subsystem
// (spec §4.9): typed discriminator validation, pair-resolution verdicts,
// and the pair-adjudication queue with active-set selection, balanced
// targeting, churn-sticky locking, budget feasibility, and
// counterevidence reservation.
package adjudication

import (
	"ledgerengine/pkg/domain/ports"
	"ledgerengine/pkg/primitives"
)

// ValidationResult is the outcome of validating one typed discriminator
// record (spec §4.10 step 4).
type ValidationResult struct {
	Valid  bool
	Reason string
}

// UsedDirection records which side of a pair a given evidence id has
// already been used to favor, so conflicting reuse can be detected.
type UsedDirection map[string]string // evidence id -> canonical id favored

// ValidateDiscriminator checks that a discriminator record is
// well-formed and does not conflict with a prior use of the same
// evidence id in a different direction; used is keyed by evidence id
// alone, so prior uses for any pair count (spec §4.10 step 4: "id present, pair
// matches, referenced evidence ids exist, not conflicting with prior
// uses").
func ValidateDiscriminator(rec ports.DiscriminatorRecord, expectedPairKey string, evidence ports.EvidenceBundle, used UsedDirection) ValidationResult {
	if rec.ID == "" {
		return ValidationResult{Reason: "missing discriminator id"}
	}
	if rec.PairKey != expectedPairKey {
		return ValidationResult{Reason: "pair key does not match contrastive context"}
	}
	if len(rec.EvidenceIDs) == 0 {
		return ValidationResult{Reason: "no referenced evidence ids"}
	}
	for _, id := range rec.EvidenceIDs {
		if _, ok := evidence[id]; !ok {
			return ValidationResult{Reason: "referenced evidence id does not exist: " + id}
		}
		if prior, ok := used[id]; ok && prior != string(rec.Direction) {
			return ValidationResult{Reason: "conflicting directional reuse of evidence id: " + id}
		}
	}
	if err := rec.Kind.Validate(); err != nil {
		return ValidationResult{Reason: err.Error()}
	}
	return ValidationResult{Valid: true}
}

// RecordUsage marks every evidence id in rec as used in rec.Direction,
// for future conflict detection within the same session.
func RecordUsage(rec ports.DiscriminatorRecord, used UsedDirection) {
	for _, id := range rec.EvidenceIDs {
		used[id] = string(rec.Direction)
	}
}

// Verdict is the resolved state of a pair's adjudication (spec §4.9).
type Verdict string

const (
	VerdictFavorsLeft  Verdict = "FAVORS_LEFT"
	VerdictFavorsRight Verdict = "FAVORS_RIGHT"
	VerdictUnresolved  Verdict = "UNRESOLVED"
)

// ResolvePairVerdict computes a pair's verdict from the typed
// discriminator records accumulated for it, requiring a minimum
// directional margin and count (spec §4.9 "A pair's verdict... is
// computed from typed discriminator records with a minimum directional
// margin and count").
func ResolvePairVerdict(leftID, rightID primitives.CanonicalID, records []ports.DiscriminatorRecord, minCount int, minMargin func(leftCount, rightCount int) bool) Verdict {
	leftCount, rightCount := 0, 0
	for _, rec := range records {
		switch rec.Direction {
		case leftID:
			leftCount++
		case rightID:
			rightCount++
		}
	}
	if leftCount+rightCount < minCount {
		return VerdictUnresolved
	}
	if leftCount > rightCount && minMargin(leftCount, rightCount) {
		return VerdictFavorsLeft
	}
	if rightCount > leftCount && minMargin(rightCount, leftCount) {
		return VerdictFavorsRight
	}
	return VerdictUnresolved
}
