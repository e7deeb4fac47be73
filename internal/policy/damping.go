package policy

import "github.com/shopspring/decimal"

// Damp blends the previous and proposed p by alpha (spec §4.5):
// p_new = alpha*p_prev + (1-alpha)*p_prop, clamped to [0, 1].
func Damp(alpha, pPrev, pProp decimal.Decimal) decimal.Decimal {
	blended := alpha.Mul(pPrev).Add(decimal.NewFromInt(1).Sub(alpha).Mul(pProp))
	return clampUnit(blended)
}

// AbsorberBranch identifies which of the two absorber-enforcement
// branches fired (spec §4.5).
type AbsorberBranch string

const (
	BranchSlack   AbsorberBranch = "slack"
	BranchRescale AbsorberBranch = "rescale"
)

// AbsorberResult is the outcome of EnforceAbsorbers: a scale factor to
// apply to every named root's p, and the resulting absorber masses.
type AbsorberResult struct {
	Branch     AbsorberBranch
	NamedScale decimal.Decimal
	NOAMass    decimal.Decimal
	UNDMass    decimal.Decimal
}

// EnforceAbsorbers renormalizes the ledger so that named roots plus
// present absorbers sum to 1.0 (spec §4.5). sumNamed is the sum of named
// roots' p after the single affected root's damped update. When
// dynamicUndMass is non-nil, it overrides the gamma-ratio split for
// H_UND's share of the slack (spec §4.6); the remaining slack still
// goes to H_NOA when present.
func EnforceAbsorbers(sumNamed decimal.Decimal, hasNOA bool, gammaNOA, gammaUND, absorberFloor decimal.Decimal, dynamicUndMass *decimal.Decimal) AbsorberResult {
	one := decimal.NewFromInt(1)

	if sumNamed.LessThanOrEqual(one) {
		slack := one.Sub(sumNamed)
		undMass := splitUndMass(slack, gammaNOA, gammaUND, hasNOA, dynamicUndMass)
		noaMass := decimal.Zero
		if hasNOA {
			noaMass = slack.Sub(undMass)
			if noaMass.IsNegative() {
				noaMass = decimal.Zero
				undMass = slack
			}
		} else {
			undMass = slack
		}
		return AbsorberResult{
			Branch:     BranchSlack,
			NamedScale: one,
			NOAMass:    noaMass,
			UNDMass:    undMass,
		}
	}

	// sumNamed > 1: rescale named roots proportionally, clamp
	// absorbers to their floor.
	absorberCount := 1
	if hasNOA {
		absorberCount = 2
	}
	floorTotal := absorberFloor.Mul(decimal.NewFromInt(int64(absorberCount)))
	remaining := one.Sub(floorTotal)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	namedScale := decimal.Zero
	if !sumNamed.IsZero() {
		namedScale = remaining.Div(sumNamed)
	}
	noaMass := decimal.Zero
	if hasNOA {
		noaMass = absorberFloor
	}
	return AbsorberResult{
		Branch:     BranchRescale,
		NamedScale: namedScale,
		NOAMass:    noaMass,
		UNDMass:    absorberFloor,
	}
}

func splitUndMass(slack, gammaNOA, gammaUND decimal.Decimal, hasNOA bool, dynamicUndMass *decimal.Decimal) decimal.Decimal {
	if dynamicUndMass != nil {
		mass := *dynamicUndMass
		if mass.GreaterThan(slack) {
			mass = slack
		}
		if mass.IsNegative() {
			mass = decimal.Zero
		}
		return mass
	}
	if !hasNOA {
		return slack
	}
	totalGamma := gammaNOA.Add(gammaUND)
	if totalGamma.IsZero() {
		return slack.Div(decimal.NewFromInt(2))
	}
	return slack.Mul(gammaUND).Div(totalGamma)
}
