// Package engine is the thin, exported public facade over the internal
// session orchestrator (spec §6 "External interfaces"). Callers embed
// this package to run a full session, replay a persisted audit trail,
// or validate a hypothesis set's pre-credit gates without spending any
// credit. Everything behind this facade is unexported so the engine's
// internal package boundaries stay free to change.
package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"ledgerengine/internal/gates"
	"ledgerengine/internal/session"
	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/domain/ports"
	"ledgerengine/pkg/domain/stopreason"
	ledgererrors "ledgerengine/pkg/errors"
	"ledgerengine/pkg/primitives"
)

// RootInput is one named causal hypothesis supplied to the engine,
// prior to canonicalization.
type RootInput = session.RootInput

// Request bundles everything a session needs to run.
type Request struct {
	Roots         []RootInput
	Config        config.Config
	CreditBudget  int
	Overlaps      map[string]gates.PairOverlap
	TemplateSlots []string
}

// Deps are the injectable ports and ambient services a session runs
// against.
type Deps struct {
	Evaluator  ports.Evaluator
	Decomposer ports.Decomposer
	AuditSink  ports.AuditSink
	Clock      primitives.Clock
	IDProvider primitives.IDProvider
	Logger     *logrus.Logger
}

// SessionResult is RunSession's outcome.
type SessionResult struct {
	SessionID  primitives.SessionID
	StopReason stopreason.Reason
	Winner     primitives.CanonicalID
	Certified  bool
	Set        *hypothesis.Set
	Events     []audit.Event
}

func toInternalDeps(d Deps) session.Deps {
	logger := d.Logger
	if logger == nil {
		logger = logrus.New()
	}
	clock := d.Clock
	if clock == nil {
		clock = primitives.SystemClock{}
	}
	idProvider := d.IDProvider
	if idProvider == nil {
		idProvider = primitives.UUIDProvider{}
	}
	return session.Deps{
		Evaluator:  d.Evaluator,
		Decomposer: d.Decomposer,
		AuditSink:  d.AuditSink,
		Clock:      clock,
		IDProvider: idProvider,
		Logger:     logger,
	}
}

func toInternalRequest(r Request) session.Request {
	return session.Request{
		Roots:         r.Roots,
		Config:        r.Config,
		CreditBudget:  r.CreditBudget,
		Overlaps:      r.Overlaps,
		TemplateSlots: r.TemplateSlots,
	}
}

// RunSession bootstraps a hypothesis set from req and drives it to a
// stop condition, returning the final ledger state and full audit
// trail (spec §6 "RunSession").
func RunSession(ctx context.Context, deps Deps, req Request) (SessionResult, error) {
	result, err := session.RunSession(ctx, toInternalDeps(deps), toInternalRequest(req))
	if err != nil {
		return SessionResult{}, err
	}
	return SessionResult{
		SessionID:  result.SessionID,
		StopReason: result.StopReason,
		Winner:     result.Selection.Winner,
		Certified:  result.Selection.Certified,
		Set:        result.Set,
		Events:     result.Events,
	}, nil
}

// ReplaySession reconstructs a session's final ledger state and
// selection outcome from a previously recorded event stream, without
// invoking any port (spec §6 "ReplaySession", "identical result
// contract" with RunSession).
func ReplaySession(events []audit.Event, worldMode hypothesis.WorldMode, templateSlots []string) (SessionResult, error) {
	result, err := session.ReplaySession(events, worldMode, templateSlots)
	if err != nil {
		return SessionResult{}, err
	}
	return SessionResult{
		StopReason: result.StopReason,
		Winner:     result.Selection.Winner,
		Certified:  result.Selection.Certified,
		Set:        result.Set,
		Events:     result.Events,
	}, nil
}

// ValidateHypothesisSet runs every pre-credit structural gate against
// req without spending any credit (spec §6 "ValidateHypothesisSet").
func ValidateHypothesisSet(req Request) (*hypothesis.Set, stopreason.Reason, []ledgererrors.Issue, error) {
	return session.ValidateHypothesisSet(toInternalRequest(req))
}
