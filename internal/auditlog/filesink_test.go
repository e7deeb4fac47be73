package auditlog

import (
	"bytes"
	"context"
	"testing"

	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/stopreason"
)

func TestFileSink_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewFileSink(&buf)

	env := audit.Envelope{ConfigHash: "abc123", PolicyProfile: "default"}
	if err := sink.WriteEnvelope(env); err != nil {
		t.Fatalf("unexpected error writing envelope: %v", err)
	}
	if err := sink.Append(context.Background(), audit.Event{Seq: 1, Kind: audit.KindDecompose, TargetID: "root-a"}); err != nil {
		t.Fatalf("unexpected error writing event: %v", err)
	}
	term := audit.Terminator{StopReason: stopreason.FrontierConfident, FinalLedger: map[string]string{"root-a": "1"}}
	if err := sink.WriteTerminator(term); err != nil {
		t.Fatalf("unexpected error writing terminator: %v", err)
	}

	gotEnv, gotEvents, gotTerm, err := ReadFile(&buf)
	if err != nil {
		t.Fatalf("unexpected error reading file: %v", err)
	}
	if gotEnv.ConfigHash != env.ConfigHash {
		t.Fatalf("envelope config hash = %s, want %s", gotEnv.ConfigHash, env.ConfigHash)
	}
	if len(gotEvents) != 1 || gotEvents[0].TargetID != "root-a" {
		t.Fatalf("expected one round-tripped event, got %+v", gotEvents)
	}
	if gotTerm.StopReason != stopreason.FrontierConfident {
		t.Fatalf("terminator stop reason = %s, want %s", gotTerm.StopReason, stopreason.FrontierConfident)
	}
}

func TestReadFile_EmptyStreamReturnsZeroValues(t *testing.T) {
	env, events, term, err := ReadFile(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.ConfigHash != "" || len(events) != 0 || term.StopReason != "" {
		t.Fatalf("expected zero values for an empty stream, got env=%+v events=%+v term=%+v", env, events, term)
	}
}
