// Package portstub provides deterministic double implementations of the
// Evaluator and Decomposer port interfaces, keyed by node and pair key.
// These are fixtures for the CLI demo and scenario tests, explicitly
// distinguished from any "real" LLM-backed oracle implementation, which
// is out of scope for this repository.
package portstub

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/domain/ports"
	ledgererrors "ledgerengine/pkg/errors"
)

// EvaluationFixture is one canned Evaluator response.
type EvaluationFixture struct {
	NodeKey string
	PairKey string // empty for non-contrastive evaluations
	Outcome ports.EvaluationOutcome
}

// DecompositionFixture is one canned Decomposer response.
type DecompositionFixture struct {
	RootKey string
	SlotKey string
	Outcome ports.DecompositionOutcome
}

// key returns the fixture lookup key for a node/pair combination.
func key(nodeKey, pairKey string) string { return nodeKey + "::" + pairKey }

// FixtureEvaluator serves EvaluationFixture values keyed by
// (node canonical id, pair key).
type FixtureEvaluator struct {
	byKey map[string]ports.EvaluationOutcome
}

// NewFixtureEvaluator builds an Evaluator double from a fixed fixture
// list. A fixture with an empty PairKey matches any evaluation of its
// node that has no pair-specific fixture, contrastive or not.
func NewFixtureEvaluator(fixtures []EvaluationFixture) *FixtureEvaluator {
	byKey := make(map[string]ports.EvaluationOutcome, len(fixtures))
	for _, f := range fixtures {
		byKey[key(f.NodeKey, f.PairKey)] = f.Outcome
	}
	return &FixtureEvaluator{byKey: byKey}
}

// Evaluate implements ports.Evaluator by looking up the fixture matching
// snapshot.CanonicalID and the contrastive pair key, if any.
func (e *FixtureEvaluator) Evaluate(ctx context.Context, snapshot ports.NodeSnapshot, contrastive *ports.ContrastiveContext, evidence ports.EvidenceBundle) (ports.EvaluationOutcome, error) {
	pairKey := ""
	if contrastive != nil {
		pairKey = contrastive.PairKey
	}
	if outcome, ok := e.byKey[key(string(snapshot.CanonicalID), pairKey)]; ok {
		return outcome, nil
	}
	if outcome, ok := e.byKey[key(string(snapshot.CanonicalID), "")]; ok {
		return outcome, nil
	}
	return ports.EvaluationOutcome{}, ledgererrors.Wrap(ledgererrors.ErrPortTransport, "no fixture registered for node "+string(snapshot.CanonicalID))
}

// FixtureDecomposer serves DecompositionFixture values keyed by
// (root canonical id, slot key).
type FixtureDecomposer struct {
	byKey map[string]ports.DecompositionOutcome
}

// NewFixtureDecomposer builds a Decomposer double from a fixed fixture
// list.
func NewFixtureDecomposer(fixtures []DecompositionFixture) *FixtureDecomposer {
	byKey := make(map[string]ports.DecompositionOutcome, len(fixtures))
	for _, f := range fixtures {
		byKey[key(f.RootKey, f.SlotKey)] = f.Outcome
	}
	return &FixtureDecomposer{byKey: byKey}
}

// Decompose implements ports.Decomposer by looking up the fixture
// matching target.RootID and target.SlotKey.
func (d *FixtureDecomposer) Decompose(ctx context.Context, target ports.TargetSpec) (ports.DecompositionOutcome, error) {
	if outcome, ok := d.byKey[key(string(target.RootID), target.SlotKey)]; ok {
		return outcome, nil
	}
	return ports.DecompositionOutcome{Success: false, FailureReason: "no fixture registered"}, nil
}

// RubricFixture builds an EvaluationOutcome with a given p, rubric
// total split evenly across the four scores, and a SUPPORTS entailment — a
// convenience used by demos and tests that do not care about the exact
// per-score breakdown.
func RubricFixture(p decimal.Decimal, total int, evidenceIDs []string) ports.EvaluationOutcome {
	r := evenRubric(total)
	return ports.EvaluationOutcome{
		P:           p,
		Rubric:      r,
		EvidenceIDs: evidenceIDs,
		Entailment:  hypothesis.EntailmentSupports,
	}
}

func evenRubric(total int) hypothesis.Rubric {
	base := total / 4
	rem := total % 4
	scores := []int{base, base, base, base}
	for i := 0; i < rem; i++ {
		scores[i]++
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))
	return hypothesis.Rubric{A: scores[0], B: scores[1], C: scores[2], D: scores[3]}
}
