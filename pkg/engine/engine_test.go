package engine

import (
	"context"
	"testing"

	"ledgerengine/internal/auditlog"
	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/ports"
	"ledgerengine/pkg/domain/stopreason"
)

type nilEvaluator struct{}

func (nilEvaluator) Evaluate(ctx context.Context, snapshot ports.NodeSnapshot, contrastive *ports.ContrastiveContext, evidence ports.EvidenceBundle) (ports.EvaluationOutcome, error) {
	return ports.EvaluationOutcome{}, nil
}

type nilDecomposer struct{}

func (nilDecomposer) Decompose(ctx context.Context, target ports.TargetSpec) (ports.DecompositionOutcome, error) {
	return ports.DecompositionOutcome{Success: false, FailureReason: "not implemented"}, nil
}

func TestRunSession_DefaultsLoggerClockAndIDProvider(t *testing.T) {
	req := Request{
		Roots:        []RootInput{{Statement: "Alpha did it", ExclusionClause: "not beta"}},
		Config:       config.Defaults(),
		CreditBudget: 1,
	}
	deps := Deps{Evaluator: nilEvaluator{}, Decomposer: nilDecomposer{}, AuditSink: auditlog.NewMemoryStore()}

	result, err := RunSession(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("expected a default-generated session id when none is injected")
	}
	if result.StopReason != stopreason.EpistemicallyExhausted && result.StopReason != stopreason.CreditsExhausted {
		t.Fatalf("unexpected stop reason with no candidate operations available: %s", result.StopReason)
	}
}
