package auditlog

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"ledgerengine/pkg/domain/audit"
	ledgererrors "ledgerengine/pkg/errors"
)

// FileSink writes one JSON object per line to an underlying writer:
// first the session Envelope, then every event in order, then the
// session Terminator (spec §6 "audit file format"). Callers are
// responsible for opening/closing the underlying file.
type FileSink struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewFileSink wraps w with buffered, line-delimited JSON encoding.
func NewFileSink(w io.Writer) *FileSink {
	bw := bufio.NewWriter(w)
	return &FileSink{w: bw, enc: json.NewEncoder(bw)}
}

type line struct {
	Line string      `json:"line"`
	Data interface{} `json:"data"`
}

// WriteEnvelope writes the session envelope as the first line.
func (f *FileSink) WriteEnvelope(env audit.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enc.Encode(line{Line: "envelope", Data: env}); err != nil {
		return ledgererrors.Wrap(err, "writing audit envelope")
	}
	return nil
}

// Append implements ports.AuditSink by writing event as its own line.
func (f *FileSink) Append(ctx context.Context, event audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enc.Encode(line{Line: "event", Data: event}); err != nil {
		return ledgererrors.Wrap(err, "writing audit event")
	}
	return nil
}

// WriteTerminator writes the session terminator as the final line and
// flushes the underlying buffer.
func (f *FileSink) WriteTerminator(term audit.Terminator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enc.Encode(line{Line: "terminator", Data: term}); err != nil {
		return ledgererrors.Wrap(err, "writing audit terminator")
	}
	return f.w.Flush()
}

// ReadFile parses a persisted audit file back into its envelope, event
// stream, and terminator (used by the replay driver and the CLI
// "replay" subcommand).
func ReadFile(r io.Reader) (audit.Envelope, []audit.Event, audit.Terminator, error) {
	var env audit.Envelope
	var term audit.Terminator
	var events []audit.Event

	dec := json.NewDecoder(r)
	for {
		var wrapper struct {
			Line string          `json:"line"`
			Data json.RawMessage `json:"data"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			if err == io.EOF {
				break
			}
			return env, nil, term, ledgererrors.Wrap(err, "decoding audit file line")
		}
		switch wrapper.Line {
		case "envelope":
			if err := json.Unmarshal(wrapper.Data, &env); err != nil {
				return env, nil, term, ledgererrors.Wrap(err, "decoding audit envelope")
			}
		case "event":
			var e audit.Event
			if err := json.Unmarshal(wrapper.Data, &e); err != nil {
				return env, nil, term, ledgererrors.Wrap(err, "decoding audit event")
			}
			events = append(events, e)
		case "terminator":
			if err := json.Unmarshal(wrapper.Data, &term); err != nil {
				return env, nil, term, ledgererrors.Wrap(err, "decoding audit terminator")
			}
		}
	}
	return env, events, term, nil
}
