// Package session implements the unexported orchestrator that composes
// canon, policy, gates, adjudication, scheduler, pipeline, and auditlog
// into the full RunSession / ReplaySession / ValidateHypothesisSet
// operations the public pkg/engine facade exposes (spec §4.11, §6).
package session

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledgerengine/internal/adjudication"
	"ledgerengine/internal/auditlog"
	"ledgerengine/internal/canon"
	"ledgerengine/internal/gates"
	"ledgerengine/internal/pipeline"
	"ledgerengine/internal/policy"
	"ledgerengine/internal/scheduler"
	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/domain/ports"
	"ledgerengine/pkg/domain/stopreason"
	ledgererrors "ledgerengine/pkg/errors"
	"ledgerengine/pkg/primitives"
)

// RootInput is one named causal hypothesis supplied in a request, prior
// to canonicalization.
type RootInput struct {
	Statement        string
	ExclusionClause  string
	StoryCardinality int
	Components       []string
}

// Request is everything RunSession needs to bootstrap and drive a
// session (spec §6 "Session orchestrator").
type Request struct {
	Roots         []RootInput
	Config        config.Config
	CreditBudget  int
	Overlaps      map[string]gates.PairOverlap
	TemplateSlots []string
}

// Deps are the injectable ports and ambient services a session is
// driven with (spec §6 "deps").
type Deps struct {
	Evaluator  ports.Evaluator
	Decomposer ports.Decomposer
	AuditSink  ports.AuditSink
	Clock      primitives.Clock
	IDProvider primitives.IDProvider
	Logger     *logrus.Logger
}

// Result is RunSession's outcome.
type Result struct {
	SessionID  primitives.SessionID
	StopReason stopreason.Reason
	Selection  scheduler.Selection
	Set        *hypothesis.Set
	Events     []audit.Event
}

// ValidateHypothesisSet runs every pre-credit structural gate against
// req without spending any credit, returning the first failing stop
// reason (spec §4.7, §4.11 "pre-credit gates").
func ValidateHypothesisSet(req Request) (*hypothesis.Set, stopreason.Reason, []ledgererrors.Issue, error) {
	set := hypothesis.NewSet(req.Config.WorldMode, req.TemplateSlots)

	seen := make(map[primitives.CanonicalID]bool)
	for _, ri := range req.Roots {
		if ri.ExclusionClause == "" {
			return nil, stopreason.ContenderSpaceInvalid, nil, ledgererrors.ErrMissingExclusionClause
		}
		id := canon.CanonicalID(ri.Statement)
		if seen[id] {
			return nil, stopreason.ContenderSpaceInvalid, nil, ledgererrors.ErrDuplicateCanonicalID
		}
		seen[id] = true
		root := &hypothesis.RootHypothesis{
			DisplayID:        ri.Statement,
			Statement:        ri.Statement,
			ExclusionClause:  ri.ExclusionClause,
			CanonicalID:      id,
			PLedger:          decimal.Zero,
			Status:           hypothesis.StatusUnscoped,
			StoryCardinality: ri.StoryCardinality,
			Components:       ri.Components,
			ContenderActive:  true,
		}
		if root.StoryCardinality == 0 {
			root.StoryCardinality = 1
		}
		set.AddRoot(root)
	}

	bootstrapLedger(set, req.Config)

	if issues := gates.ContenderSpace(set.NamedRoots(), req.Config.CompositionalMode); len(issues) > 0 {
		return set, stopreason.ContenderSpaceInvalid, issues, nil
	}

	if issues := gates.MECECertificate(set.Order, req.Overlaps, req.Config.MaxPairOverlap); len(issues) > 0 {
		return set, stopreason.MECECertificateFailed, issues, nil
	}

	thresholdResult := gates.PolicyThresholdCompatibility(req.Config, decimal.NewFromInt(1), req.Config.FrameAdequacyCap, req.Config.ForecastingCalibrationHardCap)
	if thresholdResult.Incompatible {
		return set, stopreason.PolicyConfigIncompatible, nil, nil
	}

	return set, "", nil, nil
}

// bootstrapLedger applies the uniform-prior split spec §8's Bootstrap
// scenario requires: every named root starts with an equal share of
// (1 - gamma), the present absorbers take gamma_noa/gamma_und, and
// every root's k_root starts at the rubric table's base k. In closed-
// world mode only H_UND absorbs mass, since H_NOA does not exist.
func bootstrapLedger(set *hypothesis.Set, cfg config.Config) {
	n := decimal.NewFromInt(int64(len(set.Order)))
	if n.IsZero() {
		return
	}

	gammaTotal := cfg.GammaUND
	set.UND.PLedger = cfg.GammaUND
	if set.NOA != nil {
		gammaTotal = gammaTotal.Add(cfg.GammaNOA)
		set.NOA.PLedger = cfg.GammaNOA
	}

	share := decimal.NewFromInt(1).Sub(gammaTotal).Div(n)
	for _, id := range set.Order {
		r := set.Roots[id]
		r.PLedger = share
		r.KRoot = policy.BootstrapK
	}
}

// RunSession bootstraps a hypothesis set from req, then drives the
// scheduler/pipeline loop until a stop condition fires, emitting the
// full audit trail (spec §4.11).
func RunSession(ctx context.Context, deps Deps, req Request) (Result, error) {
	sessionID := deps.IDProvider.NewSessionID()
	log := deps.Logger.WithField("session_id", string(sessionID))

	set, failReason, issues, err := ValidateHypothesisSet(req)
	if err != nil {
		return Result{SessionID: sessionID}, err
	}
	seq := 0
	var events []audit.Event
	emit := func(kind audit.Kind, target string, payload map[string]interface{}) {
		seq++
		e := audit.Event{Seq: seq, Timestamp: deps.Clock.Now(), Kind: kind, TargetID: target, Payload: payload}
		events = append(events, e)
		if appendErr := deps.AuditSink.Append(ctx, e); appendErr != nil {
			log.WithError(appendErr).Warn("audit sink append failed")
		}
	}

	if failReason != "" {
		payload := map[string]interface{}{"issue_count": len(issues)}
		emit(audit.KindStopReason, "", payload)
		return Result{SessionID: sessionID, StopReason: failReason, Set: set, Events: events}, nil
	}

	ledger := scheduler.Ledger{Budget: req.CreditBudget}
	pipe := pipeline.New(req.Config, deps.Clock)
	queue := adjudication.NewQueue(req.Config)
	used := adjudication.UsedDirection{}
	thresholdResult := gates.PolicyThresholdCompatibility(req.Config, decimal.NewFromInt(1), req.Config.FrameAdequacyCap, req.Config.ForecastingCalibrationHardCap)

	opIndex := 0
	for {
		opIndex++

		leader := set.Leader()
		frontier := set.Frontier(leader, req.Config.Epsilon)

		candidates := buildCandidates(set, queue, req.Config, frontier, opIndex)

		active := adjudication.ActiveSet(set, req.Config, opIndex)
		pendingPairs := adjudication.CandidatePairs(active, queue)

		check := scheduler.StopCheck{
			Ledger:       ledger,
			Leader:       leader,
			Frontier:     frontier,
			TauEffective: thresholdResult.TauEffective,
			Cancelled:    ctx.Err() != nil,
			Closure: scheduler.ClosureGates{
				MinWinnerMargin:               req.Config.MinWinnerMargin,
				WinnerMargin:                  winnerMargin(set.ActiveRoots()),
				MinDecompositionDepth:         req.Config.MinDecompositionDepth,
				ObservedDecompositionDepth:    minDecompositionDepth(set, leader, req.Config),
				ActiveSetAdjudicationRequired: req.Config.ActiveSetAdjudicationRequired,
				ActiveSetAdjudicationComplete: len(pendingPairs) == 0,
			},
			NoCandidateOperations: len(candidates) == 0,
		}
		if reason, halt := check.Evaluate(); halt {
			if reason == stopreason.Cancelled {
				emit(audit.KindCancelled, "", map[string]interface{}{"context_error": ctx.Err().Error()})
			}
			selection := scheduler.BuildSelection(leader, thresholdResult.Adjusted || reason != stopreason.FrontierConfident)
			emit(audit.KindStopReason, "", map[string]interface{}{"reason": string(reason)})
			return Result{SessionID: sessionID, StopReason: reason, Selection: selection, Set: set, Events: events}, nil
		}

		op, ok := scheduler.ChooseOperation(candidates)
		if !ok {
			emit(audit.KindStopReason, "", map[string]interface{}{"reason": string(stopreason.EpistemicallyExhausted)})
			return Result{SessionID: sessionID, StopReason: stopreason.EpistemicallyExhausted, Set: set, Events: events}, nil
		}

		switch op.Kind {
		case scheduler.OpDecompose:
			target := ports.TargetSpec{RootID: op.RootID, SlotKey: op.SlotKey}
			outcome, portErr := deps.Decomposer.Decompose(ctx, target)
			if portErr != nil {
				log.WithError(portErr).Warn("decompose port call failed")
				emit(audit.KindPortFailure, string(op.RootID), map[string]interface{}{"operation": "decompose"})
				if !req.Config.RefundCreditsOnPortFailure {
					ledger.Spend()
				}
				continue
			}
			opEvents, applyErr := pipe.ApplyDecompose(set, target, outcome, opIndex, &seq)
			if applyErr != nil {
				return Result{SessionID: sessionID, Set: set, Events: events}, applyErr
			}
			events = append(events, opEvents...)
			for _, e := range opEvents {
				_ = deps.AuditSink.Append(ctx, e)
			}
			ledger.Spend()

		case scheduler.OpEvaluate:
			snapshot := buildSnapshot(set, op.NodeIndex)
			var contrastive *ports.ContrastiveContext
			if op.Pair != nil {
				contrastive = &ports.ContrastiveContext{
					PairKey:     op.Pair.Key(),
					LeftRootID:  op.Pair.Left,
					RightRootID: op.Pair.Right,
				}
			}
			outcome, portErr := deps.Evaluator.Evaluate(ctx, snapshot, contrastive, nil)
			if portErr != nil {
				log.WithError(portErr).Warn("evaluate port call failed")
				emit(audit.KindPortFailure, string(snapshot.CanonicalID), map[string]interface{}{"operation": "evaluate"})
				if !req.Config.RefundCreditsOnPortFailure {
					ledger.Spend()
				}
				continue
			}
			opEvents, applyErr := pipe.ApplyEvaluate(set, op.NodeIndex, outcome, contrastive, nil, used, queue, opIndex, &seq)
			if applyErr != nil {
				return Result{SessionID: sessionID, Set: set, Events: events}, applyErr
			}
			events = append(events, opEvents...)
			for _, e := range opEvents {
				_ = deps.AuditSink.Append(ctx, e)
			}
			if op.Pair != nil && len(outcome.Discriminators) > 0 {
				verdict := adjudication.ResolvePairVerdict(op.Pair.Left, op.Pair.Right, outcome.Discriminators, req.Config.MinDirectionalCount, func(a, b int) bool {
					return decimal.NewFromInt(int64(a - b)).GreaterThanOrEqual(req.Config.MinDirectionalMargin.Mul(decimal.NewFromInt(int64(a + b))))
				})
				queue.RecordResolution(*op.Pair, verdict, opIndex)
			}
			ledger.Spend()
		}
	}
}

// ReplaySession replays a persisted event stream through the pure
// replay driver without calling any port, returning the same Result
// shape RunSession returns so callers can recover the replayed stop
// reason and selection without inspecting raw events themselves (spec
// §6 "ReplaySession", "identical result contract").
func ReplaySession(events []audit.Event, worldMode hypothesis.WorldMode, templateSlots []string) (Result, error) {
	set, err := auditlog.Replay(events, worldMode, templateSlots)
	if err != nil {
		return Result{}, err
	}

	var reason stopreason.Reason
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind != audit.KindStopReason {
			continue
		}
		if r, ok := events[i].Payload["reason"].(string); ok {
			reason = stopreason.Reason(r)
		}
		break
	}

	leader := set.Leader()
	// Replay has no access to the original session's policy/threshold
	// adjustment decision, so certification is approximated from the
	// recovered stop reason: only FRONTIER_CONFIDENT ever certifies a
	// winner in the live run.
	selection := scheduler.BuildSelection(leader, reason != stopreason.FrontierConfident)

	return Result{StopReason: reason, Selection: selection, Set: set, Events: events}, nil
}

// winnerMargin returns the leader's PLedger minus the runner-up's,
// among active roots (spec §4.11 "minimum winner margin"). With fewer
// than two active roots there is no runner-up to beat.
func winnerMargin(active []*hypothesis.RootHypothesis) decimal.Decimal {
	if len(active) < 2 {
		return decimal.NewFromInt(1)
	}
	sorted := append([]*hypothesis.RootHypothesis(nil), active...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PLedger.Equal(sorted[j].PLedger) {
			return sorted[i].PLedger.GreaterThan(sorted[j].PLedger)
		}
		return sorted[i].CanonicalID < sorted[j].CanonicalID
	})
	return sorted[0].PLedger.Sub(sorted[1].PLedger)
}

// minDecompositionDepth returns the shallowest decomposition depth
// among the leader's required (NEC) top-level obligation slots (spec
// §4.11 "minimum decomposition depth per NEC slot"). A leader with no
// NEC obligations trivially satisfies the gate.
func minDecompositionDepth(set *hypothesis.Set, leader *hypothesis.RootHypothesis, cfg config.Config) int {
	if leader == nil {
		return cfg.MinDecompositionDepth
	}
	min := -1
	for _, key := range leader.SortedObligationKeys() {
		idx := leader.Obligations[key]
		node := set.Node(idx)
		if node == nil || node.Role != hypothesis.RoleNEC {
			continue
		}
		d := set.NodeDepth(idx)
		if min == -1 || d < min {
			min = d
		}
	}
	if min == -1 {
		return cfg.MinDecompositionDepth
	}
	return min
}

// lowestKObligation returns the obligation slot with the lowest current
// k on root, for the plain per-root base-case EVALUATE candidate (spec
// §4.8 step 1.c).
func lowestKObligation(set *hypothesis.Set, root *hypothesis.RootHypothesis) (hypothesis.NodeIndex, string, bool) {
	var (
		bestIdx hypothesis.NodeIndex
		bestKey string
		bestK   decimal.Decimal
		found   bool
	)
	for _, key := range root.SortedObligationKeys() {
		idx := root.Obligations[key]
		node := set.Node(idx)
		if node == nil {
			continue
		}
		if !found || node.K.LessThan(bestK) {
			bestIdx, bestKey, bestK, found = idx, key, node.K, true
		}
	}
	return bestIdx, bestKey, found
}

// buildCandidates proposes every legal operation for the current
// scheduler step (spec §4.8): DECOMPOSE on any frontier root missing a
// template slot takes priority; otherwise EVALUATE candidates are
// proposed both for the active pair-adjudication target (if any) and,
// independently, for each frontier root's lowest-k obligation slot, so
// ChooseOperation's VOI-lite priority can select among them and a
// session never dead-ends into EPISTEMICALLY_EXHAUSTED merely because
// no pair can currently form.
func buildCandidates(set *hypothesis.Set, queue *adjudication.Queue, cfg config.Config, frontier []*hypothesis.RootHypothesis, opIndex int) []scheduler.Operation {
	var out []scheduler.Operation

	for _, root := range frontier {
		for _, key := range cfg.TemplateSlots {
			if _, ok := root.Obligations[key]; !ok {
				out = append(out, scheduler.Operation{
					Kind:        scheduler.OpDecompose,
					RootID:      root.CanonicalID,
					SlotKey:     key,
					VOIEstimate: decimal.NewFromInt(1),
				})
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	massByID := make(map[primitives.CanonicalID]decimal.Decimal, len(set.Order))
	for _, r := range set.NamedRoots() {
		massByID[r.CanonicalID] = r.PLedger
	}

	active := adjudication.ActiveSet(set, cfg, opIndex)
	candidatePairs := adjudication.CandidatePairs(active, queue)
	if target, ok, _ := adjudication.SelectTarget(candidatePairs, queue, massByID, cfg); ok {
		for _, rootID := range []primitives.CanonicalID{target.Left, target.Right} {
			root := set.Roots[rootID]
			for _, key := range root.SortedObligationKeys() {
				idx := root.Obligations[key]
				pairCopy := target
				out = append(out, scheduler.Operation{
					Kind:        scheduler.OpEvaluate,
					RootID:      rootID,
					SlotKey:     key,
					NodeIndex:   idx,
					Pair:        &pairCopy,
					VOIEstimate: cfg.LambdaVOI.Mul(massByID[rootID]),
				})
			}
		}
	}

	for _, root := range frontier {
		idx, key, ok := lowestKObligation(set, root)
		if !ok {
			continue
		}
		out = append(out, scheduler.Operation{
			Kind:        scheduler.OpEvaluate,
			RootID:      root.CanonicalID,
			SlotKey:     key,
			NodeIndex:   idx,
			VOIEstimate: cfg.LambdaVOI.Mul(massByID[root.CanonicalID]),
		})
	}

	return out
}

func buildSnapshot(set *hypothesis.Set, idx hypothesis.NodeIndex) ports.NodeSnapshot {
	n := set.Node(idx)
	if n == nil {
		return ports.NodeSnapshot{}
	}
	return ports.NodeSnapshot{
		CanonicalID:       n.CanonicalID,
		RootID:            n.RootID,
		Role:              n.Role,
		P:                 n.P,
		K:                 n.K,
		EvidenceRefs:      n.EvidenceRefs,
		DecompositionType: n.DecompositionType,
		NonDiscriminative: n.NonDiscriminative,
	}
}
