package config

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load parses a YAML policy-profile bundle and merges it over Defaults().
// Unknown keys are rejected at load time (spec §9 "Unknown keys are
// rejected at load time; defaults are explicit") via yaml.v3's strict
// decoder.
func Load(data []byte) (Config, error) {
	cfg := Defaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration bundle")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "validating configuration bundle")
	}
	return cfg, nil
}
