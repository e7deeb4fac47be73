package config

import "fmt"

// QuoteFidelityMode selects how quote-fidelity mismatches are handled
// (spec §3, §4.10 step 6).
type QuoteFidelityMode string

const (
	QuoteFidelityStrict   QuoteFidelityMode = "strict"
	QuoteFidelityAdvisory QuoteFidelityMode = "advisory"
)

// Validate reports whether m is a defined quote-fidelity mode.
func (m QuoteFidelityMode) Validate() error {
	switch m {
	case QuoteFidelityStrict, QuoteFidelityAdvisory:
		return nil
	default:
		return fmt.Errorf("invalid quote fidelity mode: %q", m)
	}
}

// ReasoningMode gates how the policy/threshold compatibility check
// behaves (spec §4.7).
type ReasoningMode string

const (
	ReasoningExplore ReasoningMode = "explore"
	ReasoningCertify ReasoningMode = "certify"
)

// Validate reports whether m is a defined reasoning mode.
func (m ReasoningMode) Validate() error {
	switch m {
	case ReasoningExplore, ReasoningCertify:
		return nil
	default:
		return fmt.Errorf("invalid reasoning mode: %q", m)
	}
}

// CounterevidenceReservationMode resolves the spec §9 Open Question on
// reservation timing. "end_only" is the default and the only mode this
// implementation ships, recorded explicitly so the choice is auditable.
type CounterevidenceReservationMode string

const (
	ReservationEndOnly CounterevidenceReservationMode = "end_only"
)
