// Package config loads the pipeline configuration and performs the eager
// setup checks: every external calculator must be present (and micrOMEGAs
// compiled) before the first stage runs, so a broken installation fails
// fast with a remediation hint instead of half way through a run.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the config.yaml structure.
type Config struct {
	Spectrum   SpectrumConfig   `yaml:"spectrum"`
	External   ExternalConfig   `yaml:"external"`
	Micromegas MicromegasConfig `yaml:"micromegas"`
	Sinderin   SinderinConfig   `yaml:"sinderin"`
}

// SpectrumConfig selects the spectrum calculator passed to simsusy.
type SpectrumConfig struct {
	Calculator string `yaml:"calculator"`
}

// ExternalConfig names the external tool executables. SDecayInput is
// optional and defaults to sdecay.in next to the slhagen binary.
type ExternalConfig struct {
	SimSUSY     string `yaml:"simsusy"`
	GM2Calc     string `yaml:"gm2calc"`
	SDecay      string `yaml:"sdecay"`
	SDecayInput string `yaml:"sdecay_input,omitempty"`
}

// MicromegasConfig describes the micrOMEGAs installation and the source
// file compiled into the relic-density executable during setup.
type MicromegasConfig struct {
	Make           string `yaml:"make"`
	Dir            string `yaml:"micromegas_dir"`
	SourceFile     string `yaml:"source_file"`
	ExecutableName string `yaml:"executable_name"`
}

// SinderinConfig configures the model converter. The section is optional
// as a whole: both values must be set for the conversion stage to run.
type SinderinConfig struct {
	Converter string `yaml:"converter"`
	UFOModel  string `yaml:"ufo_model"`
}

// Configured reports whether the converter stage is set up.
func (s SinderinConfig) Configured() bool {
	return s.Converter != "" && s.UFOModel != ""
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s (consider 'cp config.yaml.example %s' and edit the file)", path, path)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks that every required key holds a non-empty string and
// reports all missing keys at once.
func (c *Config) validate(path string) error {
	required := []struct {
		key   string
		value string
	}{
		{"spectrum.calculator", c.Spectrum.Calculator},
		{"external.simsusy", c.External.SimSUSY},
		{"external.gm2calc", c.External.GM2Calc},
		{"external.sdecay", c.External.SDecay},
		{"micromegas.make", c.Micromegas.Make},
		{"micromegas.micromegas_dir", c.Micromegas.Dir},
		{"micromegas.source_file", c.Micromegas.SourceFile},
		{"micromegas.executable_name", c.Micromegas.ExecutableName},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing or empty keys: %s", path, strings.Join(missing, ", "))
	}
	return nil
}
