// Package audit defines the typed audit event schema (spec §3
// "AuditEvent", §4.12, §6 "Audit file format"). An event stream is
// append-only within a session and strictly sequenced by Seq.
package audit

import (
	"time"

	"ledgerengine/pkg/domain/stopreason"
)

// Kind enumerates the audit event types. The pipeline and the session
// loop emit them; the gate_* kinds and the evaluate, pair_deferred,
// pair_task_selected, anomaly, session_envelope and session_terminator
// kinds are defined here but not emitted as events.
type Kind string

const (
	KindSessionEnvelope          Kind = "session_envelope"
	KindGateMECECertificate      Kind = "gate_mece_certificate"
	KindGateContenderSpace       Kind = "gate_contender_space"
	KindGatePolicyThreshold      Kind = "gate_policy_threshold"
	KindDecompose                Kind = "decompose"
	KindDecomposeFailed          Kind = "decompose_failed"
	KindEvaluate                 Kind = "evaluate"
	KindConservativeDeltaEnforced Kind = "conservative_delta_enforced"
	KindContradictionFloorApplied Kind = "contradiction_floor_applied"
	KindDiscriminatorInvalidated Kind = "discriminator_invalidated"
	KindQuoteFidelityDegraded    Kind = "quote_fidelity_degraded"
	KindNonDiscriminativeBound   Kind = "non_discriminative_bound"
	KindRubricApplied            Kind = "rubric_applied"
	KindLedgerUpdate             Kind = "ledger_update"
	KindAbsorberEnforcement      Kind = "absorber_enforcement"
	KindDynamicAbstentionApplied Kind = "dynamic_abstention_applied"
	KindPairVerdictUpdated       Kind = "pair_verdict_updated"
	KindPairDeferred             Kind = "pair_deferred"
	KindPairTaskSelected         Kind = "pair_task_selected"
	KindAnomaly                  Kind = "anomaly"
	KindPortFailure              Kind = "port_failure"
	KindCancelled                Kind = "cancelled"
	KindStopReason               Kind = "stop_reason"
	KindSessionTerminator        Kind = "session_terminator"
)

// Event is one append-only, fully numeric audit record (spec §3
// "AuditEvent"). Payload carries the exact inputs and outputs of the
// computation that produced the event, keyed by field name, so replay
// can rebuild ledger values from the recorded numbers without
// recomputing them.
type Event struct {
	Seq           int
	Timestamp     time.Time
	Kind          Kind
	TargetID      string
	Payload       map[string]interface{}
	CreditsBefore int
	CreditsAfter  int
}

// Envelope is the first line of a persisted audit file: the session's
// config hash, root hashes, and policy profile fingerprint (spec §6).
type Envelope struct {
	ConfigHash          string
	RootHashes          []string
	PolicyProfile       string
	DeterminismStrategy string
}

// Terminator is the last line of a persisted audit file: the stop
// reason and the final ledger snapshot (spec §6).
type Terminator struct {
	StopReason      stopreason.Reason
	FinalLedger     map[string]string // canonical id -> decimal string
	CreditsRemaining int
}
