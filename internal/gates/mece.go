// Package gates implements the pure structural gates run before any
// credit is spent, plus the frame-adequacy and quote-fidelity checks
// used later in the pipeline (spec §4.7).
package gates

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/config"
	ledgererrors "ledgerengine/pkg/errors"
	"ledgerengine/pkg/primitives"
)

// PairKey returns a canonical, order-independent key for an unordered
// pair of root ids.
func PairKey(a, b primitives.CanonicalID) string {
	if a <= b {
		return string(a) + "|" + string(b)
	}
	return string(b) + "|" + string(a)
}

// PairOverlap is the declared overlap score and discriminator string for
// one unordered pair of named roots, consulted by the MECE certificate.
type PairOverlap struct {
	RootA         primitives.CanonicalID
	RootB         primitives.CanonicalID
	OverlapScore  decimal.Decimal
	Discriminator string
}

// MECECertificate verifies every unordered named-root pair has an
// overlap score at or below maxPairOverlap and a non-empty discriminator
// string (spec §4.7). roots must be in canonical order; overlaps is
// keyed by PairKey. Missing pairs are treated as a certificate failure
// (no declared discriminator).
func MECECertificate(roots []primitives.CanonicalID, overlaps map[string]PairOverlap, maxPairOverlap decimal.Decimal) []ledgererrors.Issue {
	var issues []ledgererrors.Issue
	for i := 0; i < len(roots); i++ {
		for j := i + 1; j < len(roots); j++ {
			key := PairKey(roots[i], roots[j])
			overlap, ok := overlaps[key]
			if !ok {
				issues = append(issues, ledgererrors.Issue{
					Code:   "pair_discriminator_missing",
					Detail: "no declared overlap/discriminator for pair",
					RootA:  string(roots[i]),
					RootB:  string(roots[j]),
				})
				continue
			}
			if overlap.OverlapScore.GreaterThan(maxPairOverlap) {
				issues = append(issues, ledgererrors.Issue{
					Code:   "pair_overlap_exceeds_threshold",
					Detail: "overlap score " + overlap.OverlapScore.String() + " exceeds max " + maxPairOverlap.String(),
					RootA:  string(roots[i]),
					RootB:  string(roots[j]),
				})
			}
			if overlap.Discriminator == "" {
				issues = append(issues, ledgererrors.Issue{
					Code:   "pair_discriminator_empty",
					Detail: "discriminator string is empty",
					RootA:  string(roots[i]),
					RootB:  string(roots[j]),
				})
			}
		}
	}
	return issues
}

// PassesMECE reports whether MECECertificate found zero issues.
func PassesMECE(roots []primitives.CanonicalID, overlaps map[string]PairOverlap, cfg config.Config) bool {
	return len(MECECertificate(roots, overlaps, cfg.MaxPairOverlap)) == 0
}
