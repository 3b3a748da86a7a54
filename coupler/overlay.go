package coupler

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyLogging  = "logging"
	keyUnits    = "units"
	keyResample = "resample"
	keyRun      = "run"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config
// fields. Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyLogging:  true,
	keyUnits:    true,
	keyResample: true,
	keyRun:      true,
}

// MergeConfig loads a YAML file and merges its top-level keys onto the
// target Config. Keys present in the overlay replace entire sections in the
// target. Keys absent in the overlay are left unchanged. Callers typically
// layer a per-run overlay over a shared base config, then Validate the
// result.
func MergeConfig(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in MergeConfig")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	// Discover which top-level keys are present in the overlay.
	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so we can unmarshal it onto the
		// strongly-typed target field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection unmarshals raw YAML bytes into the correct field of target
// based on the given key name. Each section is unmarshalled into a fresh
// zero-value to ensure complete replacement (yaml.Unmarshal merges into
// existing maps, which would violate shallow-merge semantics).
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyLogging:
		var v LoggingConfig
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Logging = v
		return nil
	case keyUnits:
		var v UnitsConfig
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Units = v
		return nil
	case keyResample:
		var v ResampleConfig
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Resample = v
		return nil
	case keyRun:
		var v RunConfig
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Run = v
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
