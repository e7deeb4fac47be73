package gates

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgerengine/pkg/domain/config"
)

func TestPolicyThresholdCompatibility_CompatibleWhenCapCoversTau(t *testing.T) {
	cfg := config.Defaults()
	cfg.Tau = decimal.NewFromFloat(0.6)
	result := PolicyThresholdCompatibility(cfg, decimal.NewFromInt(1), decimal.NewFromFloat(0.9), decimal.NewFromFloat(0.9))
	if result.Incompatible || result.Adjusted {
		t.Fatalf("expected plain compatibility, got %+v", result)
	}
}

func TestPolicyThresholdCompatibility_IncompatibleInCertifyMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.Tau = decimal.NewFromFloat(0.95)
	cfg.ReasoningMode = config.ReasoningCertify
	result := PolicyThresholdCompatibility(cfg, decimal.NewFromInt(1), decimal.NewFromFloat(0.9), decimal.NewFromFloat(0.9))
	if !result.Incompatible {
		t.Fatalf("expected incompatibility in certify mode when cap < tau, got %+v", result)
	}
}

func TestPolicyThresholdCompatibility_AdjustsTauInExploreMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.Tau = decimal.NewFromFloat(0.95)
	cfg.ReasoningMode = config.ReasoningExplore
	result := PolicyThresholdCompatibility(cfg, decimal.NewFromInt(1), decimal.NewFromFloat(0.9), decimal.NewFromFloat(0.9))
	if !result.Adjusted || result.Incompatible {
		t.Fatalf("expected tau to be adjusted down rather than flagged incompatible, got %+v", result)
	}
	if !result.TauEffective.Equal(decimal.NewFromFloat(0.9)) {
		t.Fatalf("tau_effective = %s, want 0.9", result.TauEffective)
	}
}
