package primitives

import "github.com/google/uuid"

// CanonicalID is a stable identifier derived from normalized statement
// text (see internal/canon). It is the only identifier that ordering
// and tie-breaking may use; it is never random and never depends on
// request ordering.
type CanonicalID string

// String returns the identifier as a plain string.
func (c CanonicalID) String() string { return string(c) }

// SessionID labels one run of the engine for logging and trace
// correlation. Unlike CanonicalID, it carries no ordering significance
// and is never used for tie-breaking or as a map key the engine branches
// on — it exists purely so operators can find a session's logs and audit
// file.
type SessionID string

// IDProvider mints non-canonical identifiers such as SessionID. It is an
// injectable dependency (spec §6 `deps.IdProvider`) so that tests and
// replay can supply deterministic values instead of random ones.
type IDProvider interface {
	NewSessionID() SessionID
}

// UUIDProvider is the default IDProvider, backed by google/uuid.
type UUIDProvider struct{}

// NewSessionID returns a random v4 UUID wrapped as a SessionID.
func (UUIDProvider) NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// FixedIDProvider always returns the same SessionID. Used by tests that
// assert on session-scoped log lines.
type FixedIDProvider struct {
	ID SessionID
}

// NewSessionID returns the fixed SessionID.
func (f FixedIDProvider) NewSessionID() SessionID { return f.ID }
