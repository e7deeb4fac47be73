package gates

import (
	"ledgerengine/pkg/domain/hypothesis"
	ledgererrors "ledgerengine/pkg/errors"
)

// ContenderSpace validates the contender-space requirement (spec §4.7):
// singleton mode passes trivially; compositional mode requires every
// root to declare a non-empty component set.
func ContenderSpace(roots []*hypothesis.RootHypothesis, compositionalMode bool) []ledgererrors.Issue {
	if !compositionalMode {
		return nil
	}
	var issues []ledgererrors.Issue
	for _, r := range roots {
		if len(r.Components) == 0 {
			issues = append(issues, ledgererrors.Issue{
				Code:   "contender_components_missing",
				Detail: "compositional mode requires declared components",
				RootA:  string(r.CanonicalID),
			})
		}
	}
	return issues
}
