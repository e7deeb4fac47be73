package hypothesis

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/primitives"
)

// NodeIndex is an arena index into HypothesisSet.Nodes. Nodes reference
// parents and children by index rather than by pointer so the arena can
// be owned entirely by the HypothesisSet (spec §9 "use arena allocation
// with integer indices rather than ownership cycles").
type NodeIndex int

// NoParent marks a node that has no parent node (a root-level slot).
const NoParent NodeIndex = -1

// DiscriminatorID identifies one typed discriminator record.
type DiscriminatorID string

// Rubric is the four-score evaluation quality rubric, each score in
// {0, 1, 2}.
type Rubric struct {
	A, B, C, D int
}

// Total returns A+B+C+D, always in [0, 8].
func (r Rubric) Total() int { return r.A + r.B + r.C + r.D }

// HasZeroScore reports whether any individual score is zero, which
// triggers the rubric-to-confidence guardrail (spec §4.2).
func (r Rubric) HasZeroScore() bool {
	return r.A == 0 || r.B == 0 || r.C == 0 || r.D == 0
}

// Node represents a slot or a child within a slot (spec §3 "Node").
type Node struct {
	Index       NodeIndex
	CanonicalID primitives.CanonicalID
	ParentIndex NodeIndex
	RootID      primitives.CanonicalID

	Role Role
	P    decimal.Decimal
	K    decimal.Decimal

	Rubric      *Rubric
	HasRubric   bool
	Guardrailed bool

	EvidenceRefs      []string
	DiscriminatorRefs []DiscriminatorID

	DecompositionType DecompositionType
	Coupling          decimal.Decimal

	// ChildKeys is the canonical, sorted order of keys into Children.
	// Kept alongside the map so iteration never depends on Go's
	// randomized map order.
	ChildKeys []string
	Children  map[string]NodeIndex

	Assumptions       []string
	Entailment        Entailment
	NonDiscriminative bool

	LastUpdatedOp int
}

// SortedChildKeys returns Children's keys in canonical (lexicographic)
// order.
func (n *Node) SortedChildKeys() []string {
	out := make([]string, len(n.ChildKeys))
	copy(out, n.ChildKeys)
	return out
}

// AddChild registers a child under key, keeping ChildKeys sorted.
func (n *Node) AddChild(key string, idx NodeIndex) {
	if n.Children == nil {
		n.Children = make(map[string]NodeIndex)
	}
	if _, exists := n.Children[key]; !exists {
		n.ChildKeys = insertSorted(n.ChildKeys, key)
	}
	n.Children[key] = idx
}

func insertSorted(keys []string, key string) []string {
	i := 0
	for i < len(keys) && keys[i] < key {
		i++
	}
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = key
	return keys
}
