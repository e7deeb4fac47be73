package hypothesis

import (
	"fmt"

	"github.com/shopspring/decimal"

	ledgererrors "ledgerengine/pkg/errors"
)

func ledgerDriftError(sum decimal.Decimal) error {
	return fmt.Errorf("%w: sum=%s", ledgererrors.ErrLedgerDrift, sum.String())
}

func checkUnitRange(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: p=%s", ledgererrors.ErrNegativeProbability, p.String())
	}
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("p_ledger out of range: %s", p.String())
	}
	return nil
}
