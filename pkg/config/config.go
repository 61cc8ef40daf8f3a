// Package config holds session-level engine settings.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"skipdb/pkg/logging"
)

// Settings are the tunable knobs of the engine. Planner switches are read
// at path-generation time only; flipping one mid-query has no effect on an
// already-planned statement.
type Settings struct {
	// EnableSkipScan toggles generation of skip-scan paths for
	// DISTINCT-style queries. Execution of an already materialized plan is
	// unaffected.
	EnableSkipScan bool `json:"enable_skipscan"`

	Logging logging.Config `json:"logging"`
}

// Default returns the settings used when no configuration file is given.
func Default() *Settings {
	return &Settings{
		EnableSkipScan: true,
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads settings from a YAML file, starting from defaults so omitted
// keys keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	settings := Default()
	if err := yaml.UnmarshalStrict(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return settings, nil
}
