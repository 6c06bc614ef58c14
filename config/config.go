// Package config loads the settings of the PIM lowering toolchain.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/lutpim/freq"
	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/pim"
	"github.com/sarchlab/lutpim/pimlog"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level configuration.
type Config struct {
	// Selector controls ISA lowering.
	Selector SelectorConfig `yaml:"selector"`

	// Pipeline controls how documents are translated.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Device describes the PIM device used for replay.
	Device DeviceConfig `yaml:"device"`

	// Log controls structured logging.
	Log LogConfig `yaml:"log"`

	// Report controls the frequency report.
	Report ReportConfig `yaml:"report"`
}

// SelectorConfig controls ISA lowering.
type SelectorConfig struct {
	// InitialRow is the row activated at the start of every program.
	InitialRow int `yaml:"initial_row"`

	// AdvanceRowOnAdd makes add lowering move the row cursor.
	AdvanceRowOnAdd bool `yaml:"advance_row_on_add"`
}

// PipelineConfig controls batch translation.
type PipelineConfig struct {
	// Workers bounds how many documents are translated at once.
	Workers int `yaml:"workers"`
}

// DeviceConfig describes the PIM device.
type DeviceConfig struct {
	Cores   int     `yaml:"cores"`
	Rows    int     `yaml:"rows"`
	FreqGHz float64 `yaml:"freq_ghz"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of error, warn, info, trace, debug.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// File receives the log. Empty means stderr.
	File string `yaml:"file,omitempty"`
}

// ReportConfig controls the frequency report.
type ReportConfig struct {
	// Format is json, yaml or text.
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{Workers: 4},
		Device:   DeviceConfig{Cores: 4, Rows: 1024, FreqGHz: 1},
		Log:      LogConfig{Level: "warn", Format: "json"},
		Report:   ReportConfig{Format: "json"},
	}
}

// Load reads a YAML file on top of the defaults. An empty path gives the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate reports the first bad value.
func (c *Config) Validate() error {
	switch {
	case c.Selector.InitialRow < 0:
		return fmt.Errorf("%w: selector.initial_row %d is negative", ErrInvalid, c.Selector.InitialRow)
	case c.Pipeline.Workers < 1:
		return fmt.Errorf("%w: pipeline.workers must be at least 1", ErrInvalid)
	case c.Device.Cores < isa.LoweredCores || c.Device.Cores > 8:
		return fmt.Errorf("%w: device.cores must be between %d and 8", ErrInvalid, isa.LoweredCores)
	case c.Device.Rows < 1:
		return fmt.Errorf("%w: device.rows must be at least 1", ErrInvalid)
	case c.Device.FreqGHz <= 0:
		return fmt.Errorf("%w: device.freq_ghz must be positive", ErrInvalid)
	case c.Selector.InitialRow >= c.Device.Rows:
		return fmt.Errorf("%w: selector.initial_row %d is outside the device",
			ErrInvalid, c.Selector.InitialRow)
	}

	if _, err := pimlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("%w: log.format %q is not json or text", ErrInvalid, c.Log.Format)
	}

	if _, err := freq.ParseFormat(c.Report.Format); err != nil {
		return fmt.Errorf("%w: report.format: %v", ErrInvalid, err)
	}

	return nil
}

// SelectorBuilder returns a selector builder with the configured settings.
func (c *Config) SelectorBuilder() isa.SelectorBuilder {
	return isa.NewSelectorBuilder().
		WithInitialRow(c.Selector.InitialRow).
		WithRowAdvanceOnAdd(c.Selector.AdvanceRowOnAdd)
}

// DeviceBuilder returns a PIM device builder with the configured settings.
func (c *Config) DeviceBuilder() pim.Builder {
	return pim.NewBuilder().
		WithCores(c.Device.Cores).
		WithRows(c.Device.Rows).
		WithFreq(sim.Freq(c.Device.FreqGHz) * sim.GHz)
}
