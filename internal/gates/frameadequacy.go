package gates

import "github.com/shopspring/decimal"

// FrameAdequacyScore scores how completely the active frame has been
// scoped: the ratio of scoped to required slots as counted by the
// caller, clamped at cap (spec §4.6 "frame-adequacy score
// (v2)", §4.7 "frame adequacy threshold and cap").
func FrameAdequacyScore(scopedSlots, requiredSlots int, cap decimal.Decimal) decimal.Decimal {
	if requiredSlots <= 0 {
		return cap
	}
	ratio := decimal.NewFromInt(int64(scopedSlots)).Div(decimal.NewFromInt(int64(requiredSlots)))
	if ratio.GreaterThan(cap) {
		return cap
	}
	return ratio
}

// MeetsFrameAdequacy reports whether score meets the configured
// threshold.
func MeetsFrameAdequacy(score, threshold decimal.Decimal) bool {
	return score.GreaterThanOrEqual(threshold)
}
