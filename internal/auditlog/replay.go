package auditlog

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/domain/hypothesis"
	ledgererrors "ledgerengine/pkg/errors"
	"ledgerengine/pkg/primitives"
)

// Replay reconstructs a hypothesis set's final ledger state from a
// recorded event stream without invoking any port: it reads back the
// exact numeric payloads already computed at record time and asserts
// they are internally consistent (spec §6 "replay reproduces the same
// outputs from the same recorded inputs without re-querying any port").
//
// Replay intentionally trusts the payload values from ledger_update and
// absorber_enforcement events rather than recomputing them from raw
// rubric/evidence inputs: the enforcement chain already ran once at
// record time, and replay's job is to verify the audit trail is
// self-consistent, not to re-derive policy outputs from scratch.
func Replay(events []audit.Event, worldMode hypothesis.WorldMode, templateSlots []string) (*hypothesis.Set, error) {
	set := hypothesis.NewSet(worldMode, templateSlots)

	for _, e := range events {
		switch e.Kind {
		case audit.KindLedgerUpdate:
			rootID := primitives.CanonicalID(e.TargetID)
			root, ok := set.Roots[rootID]
			if !ok {
				root = &hypothesis.RootHypothesis{CanonicalID: rootID, ContenderActive: true}
				set.AddRoot(root)
			}
			pNewStr, _ := e.Payload["p_new"].(string)
			pNew, err := decimal.NewFromString(pNewStr)
			if err != nil {
				return nil, ledgererrors.Wrap(err, "replay: parsing p_new from ledger_update payload")
			}
			root.PLedger = pNew
		case audit.KindAbsorberEnforcement:
			namedScaleStr, _ := e.Payload["named_scale"].(string)
			namedScale, err := decimal.NewFromString(namedScaleStr)
			if err != nil {
				return nil, ledgererrors.Wrap(err, "replay: parsing named_scale from absorber_enforcement payload")
			}
			for _, id := range set.Order {
				set.Roots[id].PLedger = set.Roots[id].PLedger.Mul(namedScale)
			}
		}
	}

	if err := set.CheckLedgerInvariants(); err != nil {
		return nil, ledgererrors.Wrap(err, "replay: ledger invariant violated after replay")
	}
	return set, nil
}

// VerifyTerminator checks that a recorded Terminator's final ledger
// snapshot matches the ledger state Replay reconstructed.
func VerifyTerminator(set *hypothesis.Set, term audit.Terminator) bool {
	for _, id := range set.Order {
		want, ok := term.FinalLedger[string(id)]
		if !ok {
			return false
		}
		got, err := decimal.NewFromString(want)
		if err != nil || !set.Roots[id].PLedger.Equal(got) {
			return false
		}
	}
	return true
}
