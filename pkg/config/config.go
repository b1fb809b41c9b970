// Package config loads geoshell settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig indicates a setting outside its allowed values.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Output formats.
const (
	Format3MF  = "3mf"
	FormatSTL  = "stl"
	FormatJSON = "json"
)

// Kernel names.
const (
	KernelGeodesic = "geodesic"
	KernelSdfx     = "sdfx"
)

var (
	validFormats = []string{Format3MF, FormatSTL, FormatJSON}
	validKernels = []string{KernelGeodesic, KernelSdfx}
	validLevels  = []string{"debug", "info", "warn", "error"}
)

// Config holds every tunable of a run.
type Config struct {
	LogLevel         string   `toml:"log_level"`
	OutputDir        string   `toml:"output_dir"`
	Formats          []string `toml:"formats"`
	WeldPrecision    int      `toml:"weld_precision"`
	DefaultFrequency int      `toml:"default_frequency"`
	Kernel           string   `toml:"kernel"`
	SdfxCells        int      `toml:"sdfx_cells"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:         "info",
		OutputDir:        "out",
		Formats:          []string{Format3MF},
		WeldPrecision:    kernel.DefaultWeldPrecision,
		DefaultFrequency: 8,
		Kernel:           KernelGeodesic,
		SdfxCells:        8,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if !slices.Contains(validLevels, c.LogLevel) {
		return fmt.Errorf("log_level %q not one of %v: %w", c.LogLevel, validLevels, ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is empty: %w", ErrInvalidConfig)
	}
	for _, f := range c.Formats {
		if !slices.Contains(validFormats, f) {
			return fmt.Errorf("format %q not one of %v: %w", f, validFormats, ErrInvalidConfig)
		}
	}
	if c.WeldPrecision < kernel.MinWeldPrecision || c.WeldPrecision > kernel.MaxWeldPrecision {
		return fmt.Errorf("weld_precision %d outside [%d, %d]: %w",
			c.WeldPrecision, kernel.MinWeldPrecision, kernel.MaxWeldPrecision, ErrInvalidConfig)
	}
	if c.DefaultFrequency < 1 {
		return fmt.Errorf("default_frequency %d must be >= 1: %w", c.DefaultFrequency, ErrInvalidConfig)
	}
	if !slices.Contains(validKernels, c.Kernel) {
		return fmt.Errorf("kernel %q not one of %v: %w", c.Kernel, validKernels, ErrInvalidConfig)
	}
	if c.SdfxCells < 1 {
		return fmt.Errorf("sdfx_cells %d must be >= 1: %w", c.SdfxCells, ErrInvalidConfig)
	}
	return nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
