// Package auditlog provides the append-only, hash-chained audit stores
// the session orchestrator writes to, and the replay driver that rebuilds
// named-root ledger values from the recorded ledger_update and
// absorber_enforcement payloads without calling any port; replay does
// not re-run the pipeline's enforcement chain. Adapted from the in-memory
// hash-chained store pattern used elsewhere in this codebase for
// tamper-evident logging.
package auditlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"ledgerengine/pkg/domain/audit"
)

// MemoryStore is an in-memory, hash-chained implementation of
// ports.AuditSink. Every Append call computes the event's hash over the
// previous hash plus its own fields, so a replayed stream can detect
// tampering by recomputing the chain.
type MemoryStore struct {
	mu       sync.Mutex
	events   []audit.Event
	hashes   []string
	lastHash string
	seq      int
}

// NewMemoryStore builds an empty hash-chained store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds event to the chain, assigning it the next sequence number
// if unset and recomputing the running hash.
func (s *MemoryStore) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Seq == 0 {
		s.seq++
		event.Seq = s.seq
	} else if event.Seq > s.seq {
		s.seq = event.Seq
	}
	s.events = append(s.events, event)
	s.lastHash = s.computeHash(event)
	s.hashes = append(s.hashes, s.lastHash)
	return nil
}

// Events returns a copy of every event appended so far, in append
// order.
func (s *MemoryStore) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ChainHead returns the hash of the most recently appended event.
func (s *MemoryStore) ChainHead() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHash
}

// Verify recomputes the hash chain from scratch and reports whether it
// matches the stored head, and the index of the first mismatch if not.
func (s *MemoryStore) Verify() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := ""
	for i, e := range s.events {
		hash = s.computeHashFrom(hash, e)
		if hash != s.hashes[i] {
			return false, i
		}
	}
	return true, -1
}

func (s *MemoryStore) computeHash(e audit.Event) string {
	return s.computeHashFrom(s.lastHash, e)
}

func (s *MemoryStore) computeHashFrom(prevHash string, e audit.Event) string {
	data := fmt.Sprintf("%d|%s|%s|%v|%s", e.Seq, e.Kind, e.TargetID, e.Payload, prevHash)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
