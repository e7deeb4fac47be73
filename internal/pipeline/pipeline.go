// Package pipeline sequences the pure policies and gates into the full
// contract-enforcement chain the spec requires around every DECOMPOSE
// and EVALUATE outcome (spec §4.10): clamp, conservative delta,
// contradiction floor, discriminator validation, non-discriminative
// bounding, quote fidelity, rubric-to-k with parent propagation,
// multiplier/p_prop/damping/absorber update, pair-verdict update, and
// audit emission. Nothing in this package performs I/O; it consumes
// port outcomes already returned by the caller and produces audit
// events plus the mutated hypothesis set.
package pipeline

import (
	"github.com/shopspring/decimal"

	"ledgerengine/internal/adjudication"
	"ledgerengine/internal/gates"
	"ledgerengine/internal/policy"
	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/domain/ports"
	ledgererrors "ledgerengine/pkg/errors"
	"ledgerengine/pkg/primitives"
)

// Pipeline wires the pure policy and gate packages into the ordered
// enforcement chain, emitting audit events as it goes.
type Pipeline struct {
	cfg   config.Config
	clock primitives.Clock
}

// New builds a Pipeline over cfg.
func New(cfg config.Config, clock primitives.Clock) *Pipeline {
	return &Pipeline{cfg: cfg, clock: clock}
}

// ApplyEvaluate runs one EVALUATE outcome through the full contract
// enforcement sequence and mutates the targeted node and its root's
// ledger entry (spec §4.10 "EVALUATE").
func (p *Pipeline) ApplyEvaluate(
	set *hypothesis.Set,
	nodeIdx hypothesis.NodeIndex,
	outcome ports.EvaluationOutcome,
	contrastive *ports.ContrastiveContext,
	evidence ports.EvidenceBundle,
	used adjudication.UsedDirection,
	queue *adjudication.Queue,
	opIndex int,
	seq *int,
) ([]audit.Event, error) {
	node := set.Node(nodeIdx)
	if node == nil {
		return nil, ledgererrors.Wrap(ledgererrors.ErrInvalidHypothesisSet, "unknown node index")
	}
	root := set.Roots[node.RootID]
	var events []audit.Event

	// 1. Clamp the proposed p into [0, 1] before anything else touches it.
	pProposed := clampUnit(outcome.P)

	// 2. Conservative delta: bound movement when no evidence ids are cited.
	pAfterDelta, deltaEnforced := policy.ApplyConservativeDelta(node.P, pProposed, outcome.EvidenceIDs)
	if deltaEnforced {
		events = append(events, p.emit(seq, audit.KindConservativeDeltaEnforced, string(node.CanonicalID), map[string]interface{}{
			"p_prev":     node.P.String(),
			"p_proposed": pProposed.String(),
			"p_enforced": pAfterDelta.String(),
		}, opIndex))
	}

	// 3. Contradiction floor: a CONTRADICTS entailment must cut p by at
	// least the configured floor.
	pAfterFloor := pAfterDelta
	if outcome.Entailment == hypothesis.EntailmentContradicts {
		var floorApplied bool
		pAfterFloor, floorApplied = policy.ApplyContradictionFloor(node.P, pAfterDelta)
		if floorApplied {
			events = append(events, p.emit(seq, audit.KindContradictionFloorApplied, string(node.CanonicalID), map[string]interface{}{
				"p_before": pAfterDelta.String(),
				"p_after":  pAfterFloor.String(),
			}, opIndex))
		}
	}

	// 4. Discriminator validation: every typed discriminator record
	// attached to this outcome must validate or be discarded.
	var validDiscriminators []ports.DiscriminatorRecord
	for _, rec := range outcome.Discriminators {
		expectedKey := ""
		if contrastive != nil {
			expectedKey = contrastive.PairKey
		}
		result := adjudication.ValidateDiscriminator(rec, expectedKey, evidence, used)
		if !result.Valid {
			events = append(events, p.emit(seq, audit.KindDiscriminatorInvalidated, string(node.CanonicalID), map[string]interface{}{
				"discriminator_id": rec.ID,
				"reason":           result.Reason,
			}, opIndex))
			continue
		}
		adjudication.RecordUsage(rec, used)
		validDiscriminators = append(validDiscriminators, rec)
	}

	// 5. Strict-contrastive non-discriminative bounding: in a strict
	// contrastive update, a node marked non-discriminative may not move
	// p beyond the conservative delta window regardless of evidence.
	finalP := pAfterFloor
	if p.cfg.StrictContrastiveUpdates && contrastive != nil && outcome.NonDiscriminative {
		bounded, bound := policy.ApplyConservativeDelta(node.P, finalP, nil)
		if bound {
			finalP = bounded
			events = append(events, p.emit(seq, audit.KindNonDiscriminativeBound, string(node.CanonicalID), map[string]interface{}{
				"p_before": pAfterFloor.String(),
				"p_after":  finalP.String(),
			}, opIndex))
		}
	}

	// 6. Quote fidelity: verify any quoted discriminator text actually
	// appears in its cited evidence.
	for _, rec := range validDiscriminators {
		if !rec.HasQuote {
			continue
		}
		item, ok := firstEvidence(rec.EvidenceIDs, evidence)
		matched := ok && gates.QuoteFidelityMatches(rec.Quote, item.Text)
		if !matched {
			events = append(events, p.emit(seq, audit.KindQuoteFidelityDegraded, string(node.CanonicalID), map[string]interface{}{
				"discriminator_id": rec.ID,
			}, opIndex))
			if p.cfg.QuoteFidelityMode == config.QuoteFidelityStrict {
				rec.HasQuote = false
			}
		}
	}

	// 7. Rubric -> k. Parent propagation runs afterward via propagateK,
	// walking the node's ancestor chain up to its root's top-level
	// obligation slots and recomputing root.KRoot from them.
	k, guardrailed := policy.RubricToK(outcome.Rubric)
	events = append(events, p.emit(seq, audit.KindRubricApplied, string(node.CanonicalID), map[string]interface{}{
		"rubric_total": outcome.Rubric.Total(),
		"k":            k.String(),
		"guardrailed":  guardrailed,
	}, opIndex))

	node.P = finalP
	node.K = k
	node.Guardrailed = guardrailed
	node.Rubric = &outcome.Rubric
	node.HasRubric = true
	node.Entailment = outcome.Entailment
	node.NonDiscriminative = outcome.NonDiscriminative
	node.EvidenceRefs = append(node.EvidenceRefs, outcome.EvidenceIDs...)
	node.LastUpdatedOp = opIndex

	propagateK(set, nodeIdx)

	// 8. Multiplier / p_prop / damping / absorber update at the root level.
	mRoot := policy.RootMultiplier(requiredSlotPs(set, root))
	pProp := policy.ProposedP(root.PLedger, mRoot)
	pNew := policy.Damp(p.cfg.Alpha, root.PLedger, pProp)

	sumNamed := decimal.Zero
	for _, id := range set.Order {
		if id == root.CanonicalID {
			sumNamed = sumNamed.Add(pNew)
		} else {
			sumNamed = sumNamed.Add(set.Roots[id].PLedger)
		}
	}

	var dynamicUndMass *decimal.Decimal
	if p.cfg.DynamicAbstentionEnabled {
		contradictionDensity, nonDiscriminativeDensity := evidenceDensities(set)
		scopedSlots, requiredSlots := frameAdequacyInputs(set, p.cfg)
		frameScore := gates.FrameAdequacyScore(scopedSlots, requiredSlots, p.cfg.FrameAdequacyCap)
		unresolvedRatio := decimal.Zero
		if queue != nil {
			unresolvedRatio = queue.UnresolvedPairRatio()
		}
		mass := policy.ComputeDynamicAbstentionMass(p.cfg.DynamicAbstentionWeights, policy.AbstentionInputs{
			UnresolvedPairRatio:      unresolvedRatio,
			ContradictionDensity:     contradictionDensity,
			NonDiscriminativeDensity: nonDiscriminativeDensity,
			FrameAdequacyScore:       frameScore,
		}, p.cfg.DynamicAbstentionMin, p.cfg.DynamicAbstentionMax)
		dynamicUndMass = &mass
		events = append(events, p.emit(seq, audit.KindDynamicAbstentionApplied, string(root.CanonicalID), map[string]interface{}{
			"mass":                       mass.String(),
			"unresolved_pair_ratio":      unresolvedRatio.String(),
			"contradiction_density":      contradictionDensity.String(),
			"non_discriminative_density": nonDiscriminativeDensity.String(),
			"frame_adequacy_score":       frameScore.String(),
		}, opIndex))
	}

	absorberResult := policy.EnforceAbsorbers(sumNamed, set.NOA != nil, p.cfg.GammaNOA, p.cfg.GammaUND, p.cfg.AbsorberFloor, dynamicUndMass)
	for _, id := range set.Order {
		r := set.Roots[id]
		if id == root.CanonicalID {
			r.PLedger = pNew.Mul(absorberResult.NamedScale)
		} else {
			r.PLedger = r.PLedger.Mul(absorberResult.NamedScale)
		}
	}
	if set.NOA != nil {
		set.NOA.PLedger = absorberResult.NOAMass
	}
	set.UND.PLedger = absorberResult.UNDMass

	events = append(events, p.emit(seq, audit.KindLedgerUpdate, string(root.CanonicalID), map[string]interface{}{
		"m_root": mRoot.String(),
		"p_prop": pProp.String(),
		"p_new":  pNew.String(),
	}, opIndex))
	events = append(events, p.emit(seq, audit.KindAbsorberEnforcement, string(root.CanonicalID), map[string]interface{}{
		"branch":      string(absorberResult.Branch),
		"named_scale": absorberResult.NamedScale.String(),
	}, opIndex))

	// 9. Pair-verdict update: record how many validated discriminators
	// this outcome adds to the contrastive pair. The queue's running pair
	// state itself is updated by the caller.
	if contrastive != nil && len(validDiscriminators) > 0 {
		events = append(events, p.emit(seq, audit.KindPairVerdictUpdated, contrastive.PairKey, map[string]interface{}{
			"records_added": len(validDiscriminators),
		}, opIndex))
	}

	root.CreditsSpent++
	return events, nil
}

// ApplyDecompose runs one DECOMPOSE outcome through its enforcement
// sequence: on success, it allocates child nodes or root-level slots;
// on failure, it marks the root UNSCOPED, caps its k_root at
// policy.UnscopedChildCap, and emits a decompose_failed event (spec
// §4.10 "DECOMPOSE").
func (p *Pipeline) ApplyDecompose(
	set *hypothesis.Set,
	target ports.TargetSpec,
	outcome ports.DecompositionOutcome,
	opIndex int,
	seq *int,
) ([]audit.Event, error) {
	root, ok := set.Roots[target.RootID]
	if !ok {
		return nil, ledgererrors.Wrap(ledgererrors.ErrInvalidHypothesisSet, "unknown root in decompose target")
	}

	if !outcome.Success {
		root.Status = hypothesis.StatusUnscoped
		if root.KRoot.GreaterThan(policy.UnscopedChildCap) {
			root.KRoot = policy.UnscopedChildCap
		}
		return []audit.Event{p.emit(seq, audit.KindDecomposeFailed, string(target.RootID), map[string]interface{}{
			"slot_key": target.SlotKey,
			"reason":   outcome.FailureReason,
		}, opIndex)}, nil
	}

	var events []audit.Event
	var parentIdx hypothesis.NodeIndex = hypothesis.NoParent
	if target.SlotKey != "" {
		if idx, ok := root.Obligations[target.SlotKey]; ok {
			parentIdx = idx
		}
	}

	for _, item := range outcome.Items {
		// Neutral defaults until evaluated (spec §4.1 "decomposition
		// seeds"): the slot node itself starts at p=0.5; a required
		// (NEC) child starts at p=1.0 so it does not drag down AND
		// aggregation before it is assessed; every new node starts at
		// the rubric table's base k.
		p0 := decimal.NewFromFloat(0.5)
		if parentIdx != hypothesis.NoParent && item.Role == hypothesis.RoleNEC {
			p0 = decimal.NewFromInt(1)
		}
		n := hypothesis.Node{
			ParentIndex:       parentIdx,
			RootID:            root.CanonicalID,
			Role:              item.Role,
			P:                 p0,
			K:                 policy.BootstrapK,
			DecompositionType: outcome.Type,
			Coupling:          outcome.Coupling,
		}
		n.CanonicalID = primitives.CanonicalID(string(root.CanonicalID) + "/" + item.Key)
		idx := set.NewNode(n)

		if parentIdx == hypothesis.NoParent {
			root.SetObligation(item.Key, idx)
		} else {
			parent := set.Node(parentIdx)
			parent.AddChild(item.Key, idx)
		}
	}

	events = append(events, p.emit(seq, audit.KindDecompose, string(target.RootID), map[string]interface{}{
		"slot_key":   target.SlotKey,
		"item_count": len(outcome.Items),
		"type":       string(outcome.Type),
	}, opIndex))

	root.CreditsSpent++
	return events, nil
}

func (p *Pipeline) emit(seq *int, kind audit.Kind, targetID string, payload map[string]interface{}, opIndex int) audit.Event {
	*seq++
	return audit.Event{
		Seq:       *seq,
		Timestamp: p.clock.Now(),
		Kind:      kind,
		TargetID:  targetID,
		Payload:   payload,
	}
}

func clampUnit(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	if p.GreaterThan(one) {
		return one
	}
	return p
}

func firstEvidence(ids []string, bundle ports.EvidenceBundle) (ports.EvidenceItem, bool) {
	for _, id := range ids {
		if item, ok := bundle[id]; ok {
			return item, true
		}
	}
	return ports.EvidenceItem{}, false
}

// propagateK walks from the just-updated node up through its parent
// chain, recomputing each ancestor's k via policy.PropagateParentK, and
// then refreshes the owning root's k_root from its top-level required
// obligation slots (spec §4.2 "parent-k propagation").
func propagateK(set *hypothesis.Set, nodeIdx hypothesis.NodeIndex) {
	cur := nodeIdx
	for {
		node := set.Node(cur)
		if node == nil || node.ParentIndex == hypothesis.NoParent {
			break
		}
		parent := set.Node(node.ParentIndex)
		if parent == nil {
			break
		}
		children := make([]policy.ChildK, 0, len(parent.ChildKeys))
		for _, key := range parent.SortedChildKeys() {
			c := set.Node(parent.Children[key])
			if c == nil {
				continue
			}
			children = append(children, policy.ChildK{
				CanonicalID: string(c.CanonicalID),
				P:           c.P,
				K:           c.K,
				Guardrailed: c.Guardrailed,
				Unscoped:    c.Role == hypothesis.RoleUnscoped,
			})
		}
		k, guardrailed := policy.PropagateParentK(parent.DecompositionType, children)
		parent.K = k
		parent.Guardrailed = guardrailed
		cur = node.ParentIndex
	}

	top := set.Node(cur)
	if top == nil {
		return
	}
	root := set.Roots[top.RootID]
	if root == nil {
		return
	}
	updateRootK(set, root)
}

// updateRootK recomputes root.KRoot as the minimum k across its
// top-level required (NEC) obligation slots, mirroring the conservative
// AND-style aggregation requiredSlotPs applies to probability (spec
// §4.2, §4.5).
func updateRootK(set *hypothesis.Set, root *hypothesis.RootHypothesis) {
	var ks []decimal.Decimal
	for _, key := range root.SortedObligationKeys() {
		idx := root.Obligations[key]
		node := set.Node(idx)
		if node == nil || node.Role != hypothesis.RoleNEC {
			continue
		}
		ks = append(ks, node.K)
	}
	if len(ks) == 0 {
		return
	}
	min := ks[0]
	for _, k := range ks[1:] {
		if k.LessThan(min) {
			min = k
		}
	}
	root.KRoot = min
}

// evidenceDensities computes the contradiction and non-discriminative
// pressure signals (spec §4.6) across every node that has been
// evaluated at least once.
func evidenceDensities(set *hypothesis.Set) (contradictionDensity, nonDiscriminativeDensity decimal.Decimal) {
	total := 0
	contradictions := 0
	nonDisc := 0
	for i := range set.Nodes {
		n := &set.Nodes[i]
		if !n.HasRubric {
			continue
		}
		total++
		if n.Entailment == hypothesis.EntailmentContradicts {
			contradictions++
		}
		if n.NonDiscriminative {
			nonDisc++
		}
	}
	if total == 0 {
		return decimal.Zero, decimal.Zero
	}
	d := decimal.NewFromInt(int64(total))
	return decimal.NewFromInt(int64(contradictions)).Div(d), decimal.NewFromInt(int64(nonDisc)).Div(d)
}

// frameAdequacyInputs counts how many of every named root's template
// slots have been scoped (decomposed into an obligation), for the
// frame-adequacy score (spec §4.6, §4.7).
func frameAdequacyInputs(set *hypothesis.Set, cfg config.Config) (scoped, required int) {
	required = len(set.Order) * len(cfg.TemplateSlots)
	for _, root := range set.NamedRoots() {
		for _, key := range cfg.TemplateSlots {
			if _, ok := root.Obligations[key]; ok {
				scoped++
			}
		}
	}
	return scoped, required
}

func requiredSlotPs(set *hypothesis.Set, root *hypothesis.RootHypothesis) []decimal.Decimal {
	var ps []decimal.Decimal
	for _, key := range root.SortedObligationKeys() {
		idx := root.Obligations[key]
		node := set.Node(idx)
		if node == nil {
			continue
		}
		if node.Role == hypothesis.RoleNEC {
			p := node.P
			if !node.HasRubric {
				p = decimal.NewFromInt(1)
			}
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return []decimal.Decimal{decimal.NewFromInt(1)}
	}
	return ps
}
