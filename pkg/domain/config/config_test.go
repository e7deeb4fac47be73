package config

import (
	"strings"
	"testing"
)

func TestDefaults_PassesValidate(t *testing.T) {
	d := Defaults()
	d.DecimalScale = 12
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected validation error on defaults: %v", err)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	c := Defaults()
	c.WorldMode = "bogus"
	c.ActiveSetContenderCount = 0
	c.DecimalScale = 0

	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"world mode", "active_set_contender_count", "decimal_scale"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to mention %q, got: %s", want, msg)
		}
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	yamlBundle := []byte("tau: 0.9\ndecimal_scale: 12\n")
	cfg, err := Load(yamlBundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tau.String() != "0.9" {
		t.Fatalf("tau = %s, want 0.9", cfg.Tau)
	}
	if cfg.Epsilon.String() != Defaults().Epsilon.String() {
		t.Fatalf("expected unset fields to retain defaults, epsilon = %s", cfg.Epsilon)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	yamlBundle := []byte("not_a_real_field: true\ndecimal_scale: 12\n")
	if _, err := Load(yamlBundle); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_RejectsInvalidBundle(t *testing.T) {
	yamlBundle := []byte("world_mode: not-a-mode\ndecimal_scale: 12\n")
	if _, err := Load(yamlBundle); err == nil {
		t.Fatal("expected validation error for invalid world_mode")
	}
}
