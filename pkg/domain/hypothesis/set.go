// Package hypothesis implements the core data model of spec §3: the
// hypothesis set with its MECE/absorber invariants, root hypotheses,
// nodes, and the arena that owns them.
package hypothesis

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/primitives"
)

// Tolerance is the allowed deviation of the ledger sum from 1.0
// (spec §3, §8 invariant 1).
var Tolerance = decimal.New(1, -9)

// Set is the hypothesis set: a mapping from root canonical id to
// RootHypothesis, plus the two absorbers (spec §3 "HypothesisSet").
type Set struct {
	Roots map[primitives.CanonicalID]*RootHypothesis

	// Order is the canonical order of named roots: ascending by
	// CanonicalID. Every iteration over named roots in the engine uses
	// this slice, never Go map iteration (spec §3 "iteration order of
	// named roots is the canonical order").
	Order []primitives.CanonicalID

	NOA *RootHypothesis // present only in open-world mode
	UND *RootHypothesis

	WorldMode     WorldMode
	TemplateSlots []string

	// Nodes is the arena owning every Node created during the session.
	Nodes []Node
}

// NewSet builds an empty Set with the two absorbers inserted according to
// worldMode (spec §3 "absorbers are always inserted"; UND is always
// present, NOA only in open-world mode).
func NewSet(worldMode WorldMode, templateSlots []string) *Set {
	s := &Set{
		Roots:         make(map[primitives.CanonicalID]*RootHypothesis),
		WorldMode:     worldMode,
		TemplateSlots: append([]string(nil), templateSlots...),
	}
	sort.Strings(s.TemplateSlots)

	s.UND = &RootHypothesis{
		DisplayID:   string(AbsorberUND),
		CanonicalID: primitives.CanonicalID(AbsorberUND),
		KRoot:       decimal.Zero,
	}
	if worldMode == WorldOpen {
		s.NOA = &RootHypothesis{
			DisplayID:   string(AbsorberNOA),
			CanonicalID: primitives.CanonicalID(AbsorberNOA),
			KRoot:       decimal.Zero,
		}
	}
	return s
}

// AddRoot inserts a named root and keeps Order sorted by canonical id.
func (s *Set) AddRoot(r *RootHypothesis) {
	s.Roots[r.CanonicalID] = r
	i := sort.Search(len(s.Order), func(i int) bool { return s.Order[i] >= r.CanonicalID })
	s.Order = append(s.Order, "")
	copy(s.Order[i+1:], s.Order[i:])
	s.Order[i] = r.CanonicalID
}

// NamedRoots returns every named RootHypothesis in canonical order.
func (s *Set) NamedRoots() []*RootHypothesis {
	out := make([]*RootHypothesis, 0, len(s.Order))
	for _, id := range s.Order {
		out = append(out, s.Roots[id])
	}
	return out
}

// ActiveRoots returns named roots that have not been retired from
// adjudication (ContenderActive == true), in canonical order.
func (s *Set) ActiveRoots() []*RootHypothesis {
	out := make([]*RootHypothesis, 0, len(s.Order))
	for _, id := range s.Order {
		r := s.Roots[id]
		if r.ContenderActive {
			out = append(out, r)
		}
	}
	return out
}

// Absorbers returns the present absorbers (NOA only in open-world mode)
// in the fixed order NOA, UND.
func (s *Set) Absorbers() []*RootHypothesis {
	out := make([]*RootHypothesis, 0, 2)
	if s.NOA != nil {
		out = append(out, s.NOA)
	}
	out = append(out, s.UND)
	return out
}

// NewNode allocates a node in the arena and returns its index.
func (s *Set) NewNode(n Node) NodeIndex {
	idx := NodeIndex(len(s.Nodes))
	n.Index = idx
	s.Nodes = append(s.Nodes, n)
	return idx
}

// Node returns a pointer into the arena for idx. The pointer is valid
// only until the next NewNode call grows the backing slice, so callers
// must not retain it across allocations — exactly the discipline an
// arena with integer indices is meant to enforce.
func (s *Set) Node(idx NodeIndex) *Node {
	if idx < 0 || int(idx) >= len(s.Nodes) {
		return nil
	}
	return &s.Nodes[idx]
}

// LedgerSum returns the sum of every named root's PLedger plus present
// absorbers.
func (s *Set) LedgerSum() decimal.Decimal {
	sum := decimal.Zero
	for _, id := range s.Order {
		sum = sum.Add(s.Roots[id].PLedger)
	}
	for _, a := range s.Absorbers() {
		sum = sum.Add(a.PLedger)
	}
	return sum
}

// CheckLedgerInvariants validates spec §8 invariant 1: the ledger sums to
// 1.0 within Tolerance and every PLedger is in [0, 1].
func (s *Set) CheckLedgerInvariants() error {
	sum := s.LedgerSum()
	diff := sum.Sub(decimal.NewFromInt(1)).Abs()
	if diff.GreaterThan(Tolerance) {
		return ledgerDriftError(sum)
	}
	for _, id := range s.Order {
		if err := checkUnitRange(s.Roots[id].PLedger); err != nil {
			return err
		}
	}
	for _, a := range s.Absorbers() {
		if err := checkUnitRange(a.PLedger); err != nil {
			return err
		}
	}
	return nil
}

// Leader returns the named, active root with maximum PLedger, breaking
// ties by canonical id (spec §4.8 step 1b).
func (s *Set) Leader() *RootHypothesis {
	var leader *RootHypothesis
	for _, r := range s.ActiveRoots() {
		if leader == nil || r.PLedger.GreaterThan(leader.PLedger) {
			leader = r
		}
	}
	return leader
}

// NodeDepth returns the decomposition depth rooted at idx: 1 for a
// node with no children, or 1 plus the maximum depth among its
// children (spec §4.11 "minimum decomposition depth per NEC slot").
func (s *Set) NodeDepth(idx NodeIndex) int {
	n := s.Node(idx)
	if n == nil || len(n.ChildKeys) == 0 {
		return 1
	}
	max := 0
	for _, key := range n.ChildKeys {
		d := s.NodeDepth(n.Children[key])
		if d > max {
			max = d
		}
	}
	return max + 1
}

// Frontier returns active roots within epsilon of the leader's PLedger,
// in canonical order (spec §4.8 step 1b).
func (s *Set) Frontier(leader *RootHypothesis, epsilon decimal.Decimal) []*RootHypothesis {
	if leader == nil {
		return nil
	}
	threshold := leader.PLedger.Sub(epsilon)
	out := make([]*RootHypothesis, 0)
	for _, r := range s.ActiveRoots() {
		if r.PLedger.GreaterThanOrEqual(threshold) {
			out = append(out, r)
		}
	}
	return out
}
