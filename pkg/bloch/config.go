// Package bloch is the host facade: a caller builds a program from
// hand-constructed AST (internal/ast), analyses and executes it through an
// Engine, and reads back the QASM transcript and tracked-outcome
// histograms, without touching internal packages directly.
package bloch

import (
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the engine defaults a host can load from YAML rather
// than hard-code: default shot count, whether echo output is enabled,
// whether unmeasured-qubit warnings are emitted on exit, and whether the
// QASM transcript is recorded at all.
type EngineConfig struct {
	DefaultShots int  `yaml:"defaultShots"`
	Echo         bool `yaml:"echo"`
	WarnOnExit   bool `yaml:"warnOnExit"`
	Transcript   bool `yaml:"transcript"`
}

// DefaultConfig returns the hard-coded defaults used when no config file is
// supplied.
func DefaultConfig() EngineConfig {
	return EngineConfig{DefaultShots: 1, Echo: true, WarnOnExit: true, Transcript: true}
}

// LoadConfig reads an EngineConfig from a YAML file at path. Fields absent
// from the file keep DefaultConfig's values.
func LoadConfig(path string) (EngineConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
