package gates

import (
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/config"
)

// ThresholdResult is the outcome of PolicyThresholdCompatibility.
type ThresholdResult struct {
	TauEffective decimal.Decimal
	Adjusted     bool
	Incompatible bool
	EffectiveCap decimal.Decimal
}

// PolicyThresholdCompatibility checks whether the effective confidence
// cap (the minimum of the profile cap, frame cap, and unvalidated
// calibration cap) can support the configured tau (spec §4.7). In
// certify mode, a cap below tau is a hard incompatibility. In explore
// mode, tau_effective is adjusted down to the cap and the adjustment is
// recorded via Adjusted.
func PolicyThresholdCompatibility(cfg config.Config, profileCap, frameCap, calibrationCap decimal.Decimal) ThresholdResult {
	effectiveCap := minDecimal(profileCap, frameCap, calibrationCap)

	if effectiveCap.GreaterThanOrEqual(cfg.Tau) {
		return ThresholdResult{
			TauEffective: cfg.Tau,
			EffectiveCap: effectiveCap,
		}
	}

	if cfg.ReasoningMode == config.ReasoningCertify {
		return ThresholdResult{
			TauEffective: cfg.Tau,
			EffectiveCap: effectiveCap,
			Incompatible: true,
		}
	}

	return ThresholdResult{
		TauEffective: effectiveCap,
		EffectiveCap: effectiveCap,
		Adjusted:     true,
	}
}

func minDecimal(values ...decimal.Decimal) decimal.Decimal {
	m := values[0]
	for _, v := range values[1:] {
		if v.LessThan(m) {
			m = v
		}
	}
	return m
}
