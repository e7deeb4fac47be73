// Package ports defines the two external oracle contracts (Evaluator,
// Decomposer) and the audit sink contract (spec §6 "Port contracts").
// These are capability interfaces with one method each, per
// spec §9 "Polymorphism" — no inheritance hierarchies.
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/primitives"
)

// NodeSnapshot is the read-only view of a node passed to the Evaluator.
type NodeSnapshot struct {
	CanonicalID       primitives.CanonicalID
	RootID            primitives.CanonicalID
	Role              hypothesis.Role
	P                 decimal.Decimal
	K                 decimal.Decimal
	EvidenceRefs       []string
	Assumptions        []string
	DecompositionType  hypothesis.DecompositionType
	NonDiscriminative  bool
}

// ContrastiveContext supplies the pair a contrastive EVALUATE is scoped
// to (spec §4.10 "EVALUATE... contrastive context").
type ContrastiveContext struct {
	PairKey        string
	LeftRootID     primitives.CanonicalID
	RightRootID    primitives.CanonicalID
	DiscriminatorSpec string
}

// EvidenceItem is one item in the evidence bundle the Evaluator may
// consult, used for quote-fidelity comparison (spec §4.10 step 6).
type EvidenceItem struct {
	ID   string
	Text string
}

// EvidenceBundle is the full set of evidence available to an Evaluate
// call, keyed by evidence id.
type EvidenceBundle map[string]EvidenceItem

// DiscriminatorRecord is a typed payload asserting that an evidence item
// contrastively favors one root over another (spec §4.9, §4.10 step 4).
type DiscriminatorRecord struct {
	ID           string
	PairKey      string
	Direction    primitives.CanonicalID // the root this record favors
	Kind         hypothesis.DiscriminatorKind
	EvidenceIDs  []string
	Quote        string
	HasQuote     bool
}

// EvaluationOutcome is the Evaluator's result for one node (spec §4.10
// "EVALUATE").
type EvaluationOutcome struct {
	P                 decimal.Decimal
	Rubric            hypothesis.Rubric
	EvidenceIDs       []string
	Discriminators    []DiscriminatorRecord
	NonDiscriminative bool
	Entailment        hypothesis.Entailment
}

// Evaluator is the external oracle that scores a node against evidence
// (spec §6 "Evaluator.evaluate").
type Evaluator interface {
	Evaluate(ctx context.Context, snapshot NodeSnapshot, contrastive *ContrastiveContext, evidence EvidenceBundle) (EvaluationOutcome, error)
}

// TargetSpec identifies what the Decomposer should expand: either a
// whole root (producing its template slots) or one existing slot
// (producing its children).
type TargetSpec struct {
	RootID  primitives.CanonicalID
	SlotKey string // empty when targeting the root itself
}

// DecompositionItem is one slot or child the Decomposer produced.
type DecompositionItem struct {
	Key       string
	Statement string
	Role      hypothesis.Role
}

// DecompositionOutcome is the Decomposer's result (spec §6
// "Decomposer.decompose").
type DecompositionOutcome struct {
	Success       bool
	FailureReason string
	Type          hypothesis.DecompositionType
	Coupling      decimal.Decimal
	Items         []DecompositionItem
}

// Decomposer is the external oracle that expands a root or slot into
// structured sub-obligations.
type Decomposer interface {
	Decompose(ctx context.Context, target TargetSpec) (DecompositionOutcome, error)
}

// AuditSink receives the append-only audit event stream (spec §6
// "AuditSink.append").
type AuditSink interface {
	Append(ctx context.Context, event audit.Event) error
}
