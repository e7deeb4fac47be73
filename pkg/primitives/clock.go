// Package primitives provides the small set of cross-cutting value types
// shared by every layer of the engine: clocks, canonical identifiers, and
// session identifiers. Nothing here depends on the hypothesis, policy, or
// scheduler packages.
package primitives

import "time"

// Clock supplies the current time to components that need to stamp
// events. The engine itself never calls time.Now() directly so that a
// session's audit trail is reproducible from injected values.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by the real wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock that always returns the same instant. Useful for
// deterministic tests and for the replay driver, which must not depend on
// wall-clock time at all.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (f FixedClock) Now() time.Time { return f.At }
