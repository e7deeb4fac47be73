package auditlog

import (
	"testing"

	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/hypothesis"
)

func TestReplay_ReconstructsLedgerFromRecordedEvents(t *testing.T) {
	events := []audit.Event{
		{Kind: audit.KindLedgerUpdate, TargetID: "root-a", Payload: map[string]interface{}{"p_new": "1"}},
		{Kind: audit.KindAbsorberEnforcement, TargetID: "root-a", Payload: map[string]interface{}{"named_scale": "1"}},
	}
	set, err := Replay(events, hypothesis.WorldClosed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, ok := set.Roots["root-a"]
	if !ok {
		t.Fatal("expected replay to create root-a from its ledger_update event")
	}
	if root.PLedger.String() != "1" {
		t.Fatalf("root-a p_ledger = %s, want 1", root.PLedger)
	}
}

func TestReplay_ErrorsOnMalformedPayload(t *testing.T) {
	events := []audit.Event{
		{Kind: audit.KindLedgerUpdate, TargetID: "root-a", Payload: map[string]interface{}{"p_new": "not-a-decimal"}},
	}
	if _, err := Replay(events, hypothesis.WorldClosed, nil); err == nil {
		t.Fatal("expected an error parsing a malformed p_new payload")
	}
}

func TestVerifyTerminator_MatchesReplayedLedger(t *testing.T) {
	events := []audit.Event{
		{Kind: audit.KindLedgerUpdate, TargetID: "root-a", Payload: map[string]interface{}{"p_new": "1"}},
	}
	set, err := Replay(events, hypothesis.WorldClosed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term := audit.Terminator{FinalLedger: map[string]string{"root-a": "1"}}
	if !VerifyTerminator(set, term) {
		t.Fatal("expected terminator to match replayed ledger")
	}
}

func TestVerifyTerminator_DetectsMismatch(t *testing.T) {
	events := []audit.Event{
		{Kind: audit.KindLedgerUpdate, TargetID: "root-a", Payload: map[string]interface{}{"p_new": "1"}},
	}
	set, err := Replay(events, hypothesis.WorldClosed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term := audit.Terminator{FinalLedger: map[string]string{"root-a": "0.5"}}
	if VerifyTerminator(set, term) {
		t.Fatal("expected terminator mismatch to be detected")
	}
}
