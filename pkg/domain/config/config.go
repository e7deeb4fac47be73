// Package config defines the engine's single configuration value object
// (spec §3 "Config", §9 "Dynamic configuration"). A Config is immutable
// for the lifetime of the session that owns it; nothing in the engine
// mutates it after session bootstrap.
package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/hypothesis"
)

// DynamicAbstentionWeights holds the linear weights for the dynamic
// abstention mass computation (spec §4.6).
type DynamicAbstentionWeights struct {
	UnresolvedPairRatio     decimal.Decimal `yaml:"unresolved_pair_ratio"`
	ContradictionDensity    decimal.Decimal `yaml:"contradiction_density"`
	NonDiscriminativeDensity decimal.Decimal `yaml:"non_discriminative_density"`
	FrameAdequacy           decimal.Decimal `yaml:"frame_adequacy"`
}

// Config enumerates every policy option the engine consults (spec §3).
// Unknown keys are rejected at load time (Load, below); every field here
// has an explicit default applied by Defaults().
type Config struct {
	Tau       decimal.Decimal `yaml:"tau"`
	Epsilon   decimal.Decimal `yaml:"epsilon"`
	GammaNOA  decimal.Decimal `yaml:"gamma_noa"`
	GammaUND  decimal.Decimal `yaml:"gamma_und"`
	Alpha     decimal.Decimal `yaml:"alpha"`
	Beta      decimal.Decimal `yaml:"beta"`
	W         decimal.Decimal `yaml:"w"`
	LambdaVOI decimal.Decimal `yaml:"lambda_voi"`

	WorldMode     hypothesis.WorldMode `yaml:"world_mode"`
	TemplateSlots []string             `yaml:"template_slots"`

	StrictContrastiveUpdates           bool `yaml:"strict_contrastive_updates"`
	TypedDiscriminatorEvidenceRequired bool `yaml:"typed_discriminator_evidence_required"`

	ActiveSetContenderCount int             `yaml:"active_set_contender_count"`
	ActiveSetMassRatioFloor decimal.Decimal `yaml:"active_set_mass_ratio_floor"`
	StickyLockEnabled       bool            `yaml:"sticky_lock_enabled"`

	PairAdjudicationPairBudget        int  `yaml:"pair_adjudication_pair_budget"`
	PairValuePrioritizationEnabled    bool `yaml:"pair_value_prioritization_enabled"`
	BalancedTargetingEnabled          bool `yaml:"balanced_targeting_enabled"`
	ActiveSetAdjudicationRequired     bool `yaml:"active_set_adjudication_required"`
	CounterevidenceReservedCredits    int  `yaml:"counterevidence_reserved_credits"`
	CounterevidenceReservationMode    CounterevidenceReservationMode `yaml:"counterevidence_reservation_mode"`
	MinDirectionalMargin              decimal.Decimal `yaml:"min_directional_margin"`
	MinDirectionalCount               int             `yaml:"min_directional_count"`

	DynamicAbstentionEnabled bool                     `yaml:"dynamic_abstention_enabled"`
	DynamicAbstentionWeights DynamicAbstentionWeights `yaml:"dynamic_abstention_weights"`
	DynamicAbstentionMin     decimal.Decimal          `yaml:"dynamic_abstention_min"`
	DynamicAbstentionMax     decimal.Decimal          `yaml:"dynamic_abstention_max"`

	FrameAdequacyThreshold decimal.Decimal `yaml:"frame_adequacy_threshold"`
	FrameAdequacyCap       decimal.Decimal `yaml:"frame_adequacy_cap"`

	ForecastingCalibrationHardCap decimal.Decimal `yaml:"forecasting_calibration_hard_cap"`

	QuoteFidelityMode QuoteFidelityMode `yaml:"quote_fidelity_mode"`
	EpsilonNC         decimal.Decimal  `yaml:"epsilon_nc"`

	ReasoningMode    ReasoningMode `yaml:"reasoning_mode"`
	ReasoningProfile string        `yaml:"reasoning_profile"`

	MaxPairOverlap       decimal.Decimal `yaml:"max_pair_overlap"`
	CompositionalMode    bool            `yaml:"compositional_mode"`
	MinWinnerMargin      decimal.Decimal `yaml:"min_winner_margin"`
	MinDecompositionDepth int            `yaml:"min_decomposition_depth"`
	DualOutputsEnabled   bool            `yaml:"dual_outputs_enabled"`

	RefundCreditsOnPortFailure bool `yaml:"refund_credits_on_port_failure"`

	// AbsorberFloor is the minimum mass each present absorber retains
	// when named roots must be rescaled down (spec §4.5 "absorbers
	// clamped to their floor").
	AbsorberFloor decimal.Decimal `yaml:"absorber_floor"`

	// DecimalScale records the decimal scale of the determinism
	// strategy; Validate requires it to be at least 1. Ledger
	// arithmetic is not rounded to it.
	DecimalScale int32 `yaml:"decimal_scale"`
}

// Defaults returns a Config populated with the spec's stated defaults
// (spec §3, and the rubric table / damping defaults used throughout
// §4). Callers load a bundle with Load and it is merged over this.
func Defaults() Config {
	d := func(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }
	return Config{
		Tau:       d(0.75),
		Epsilon:   d(0.05),
		GammaNOA:  d(0.10),
		GammaUND:  d(0.10),
		Alpha:     d(0.30),
		Beta:      d(1.0),
		W:         d(5.0),
		LambdaVOI: d(0.25),

		WorldMode:     hypothesis.WorldOpen,
		TemplateSlots: nil,

		StrictContrastiveUpdates:           true,
		TypedDiscriminatorEvidenceRequired: false,

		ActiveSetContenderCount: 3,
		ActiveSetMassRatioFloor: d(0.05),
		StickyLockEnabled:       true,

		PairAdjudicationPairBudget:     4,
		PairValuePrioritizationEnabled: true,
		BalancedTargetingEnabled:       true,
		ActiveSetAdjudicationRequired:  false,
		CounterevidenceReservedCredits: 0,
		CounterevidenceReservationMode: ReservationEndOnly,
		MinDirectionalMargin:           d(0.15),
		MinDirectionalCount:            1,

		DynamicAbstentionEnabled: false,
		DynamicAbstentionWeights: DynamicAbstentionWeights{
			UnresolvedPairRatio:      d(0.25),
			ContradictionDensity:     d(0.25),
			NonDiscriminativeDensity: d(0.25),
			FrameAdequacy:            d(0.25),
		},
		DynamicAbstentionMin: d(0.02),
		DynamicAbstentionMax: d(0.40),

		FrameAdequacyThreshold: d(0.50),
		FrameAdequacyCap:       d(0.90),

		ForecastingCalibrationHardCap: d(0.90),

		QuoteFidelityMode: QuoteFidelityAdvisory,
		EpsilonNC:         d(0.03),

		ReasoningMode:    ReasoningExplore,
		ReasoningProfile: "default",

		MaxPairOverlap:        d(0.30),
		CompositionalMode:     false,
		MinWinnerMargin:       d(0.10),
		MinDecompositionDepth: 1,
		DualOutputsEnabled:    false,

		RefundCreditsOnPortFailure: false,
		AbsorberFloor:              decimal.Zero,

		DecimalScale: 12,
	}
}

// Validate checks cross-field consistency and enum validity that yaml
// decoding alone cannot catch. Every violation is collected rather than
// returning on the first failure, so a caller fixing a bundle sees the
// whole list in one pass.
func (c Config) Validate() error {
	var result *multierror.Error
	if err := c.WorldMode.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.QuoteFidelityMode.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.ReasoningMode.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.ActiveSetContenderCount < 1 {
		result = multierror.Append(result, fmt.Errorf("active_set_contender_count must be >= 1, got %d", c.ActiveSetContenderCount))
	}
	if c.DecimalScale < 1 {
		result = multierror.Append(result, fmt.Errorf("decimal_scale must be >= 1, got %d", c.DecimalScale))
	}
	return result.ErrorOrNil()
}
