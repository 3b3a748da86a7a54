package coupler

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/rshade/scmkit/internal/logging"
	"github.com/rshade/scmkit/timeseries"
)

// Config is the optional engine configuration, loaded from YAML.
type Config struct {
	// Logging controls how the engines log.
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`

	// Units configures the unit registry backing the exchange.
	Units UnitsConfig `yaml:"units,omitempty" json:"units,omitempty"`

	// Resample sets the default resampling policies.
	Resample ResampleConfig `yaml:"resample,omitempty" json:"resample,omitempty"`

	// Run declares the coupling run window.
	Run RunConfig `yaml:"run,omitempty" json:"run,omitempty"`
}

// LoggingConfig selects log level, format and an optional log file.
type LoggingConfig struct {
	// Level is a zerolog level name (default: info).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// Format is "console" or "json" (default: console).
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// File, when set, sends output to this path instead of stderr.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// ToLoggingConfig converts the section to a logging.Config. If File is
// set the output becomes "file", otherwise it defaults to "stderr".
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// UnitsConfig configures the unit registry.
type UnitsConfig struct {
	// MetricTables lists paths of extra metric conversion tables in the
	// same CSV layout as the bundled one. Each file registers contexts
	// named after its columns.
	MetricTables []string `yaml:"metric_tables,omitempty" json:"metric_tables,omitempty"`

	// DisableStandardMetrics drops the bundled GWP table, leaving only
	// the fixed chemistry contexts and the tables listed above.
	DisableStandardMetrics bool `yaml:"disable_standard_metrics,omitempty" json:"disable_standard_metrics,omitempty"`
}

// ResampleConfig sets the default resampling policies applied to
// requests built through the exchange.
type ResampleConfig struct {
	// Interpolation names the interpolation type (default: linear).
	Interpolation string `yaml:"interpolation,omitempty" json:"interpolation,omitempty"`

	// Extrapolation names the extrapolation type (default: none).
	Extrapolation string `yaml:"extrapolation,omitempty" json:"extrapolation,omitempty"`
}

// RunConfig declares the coupling run window used for run grids.
type RunConfig struct {
	Start FlexTime `yaml:"start,omitempty" json:"start,omitempty"`
	Stop  FlexTime `yaml:"stop,omitempty" json:"stop,omitempty"`
}

// FlexTime is a time.Time that unmarshals from the timestamp formats
// people actually put in config files: RFC3339, human-readable dates,
// or a bare year meaning January 1 of that year.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalYAML(value *yaml.Node) error {
	var year int
	if err := value.Decode(&year); err == nil {
		t.Time = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return fmt.Errorf("parsing time %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

func (t FlexTime) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(time.RFC3339), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Resample: ResampleConfig{
			Interpolation: "linear",
			Extrapolation: "none",
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing
// file is not an error; the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the parts of the configuration that must be usable
// before an exchange is built.
func (c *Config) Validate() error {
	if _, err := timeseries.ParseInterpolationType(c.Resample.Interpolation); err != nil {
		return err
	}
	if _, err := timeseries.ParseExtrapolationType(c.Resample.Extrapolation); err != nil {
		return err
	}

	startSet, stopSet := !c.Run.Start.IsZero(), !c.Run.Stop.IsZero()
	if startSet != stopSet {
		return fmt.Errorf("run window needs both start and stop")
	}
	if startSet && !c.Run.Stop.After(c.Run.Start.Time) {
		return fmt.Errorf("run window: stop %s is not after start %s",
			c.Run.Stop.Format(time.RFC3339), c.Run.Start.Format(time.RFC3339))
	}
	return nil
}
