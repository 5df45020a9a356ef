package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/orizon-lang/rangeopt/internal/codegen"
	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/features"
)

// Config represents the configuration of the rangeopt tool
type Config struct {
	Verbose         bool   `json:"verbose"`
	Debug           bool   `json:"debug"`
	LanguageVersion string `json:"language_version"`
	MaxSteps        int64  `json:"max_steps"`
	Specialize      bool   `json:"specialize"`
	Listen          string `json:"listen"`
	CertFile        string `json:"cert_file"`
	KeyFile         string `json:"key_file"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		LanguageVersion: features.LatestVersion,
		MaxSteps:        10_000_000,
		Specialize:      true,
		Listen:          "127.0.0.1:4433",
	}
}

// Environment variables overriding the configuration file.
const (
	EnvVerbose         = "RANGEOPT_VERBOSE"
	EnvDebug           = "RANGEOPT_DEBUG"
	EnvLanguageVersion = "RANGEOPT_LANGUAGE_VERSION"
	EnvMaxSteps        = "RANGEOPT_MAX_STEPS"
	EnvSpecialize      = "RANGEOPT_SPECIALIZE"
	EnvListen          = "RANGEOPT_LISTEN"
)

// LoadConfig loads configuration from file. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Default config if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields with the RANGEOPT_* environment variables that
// are set.
func (c *Config) ApplyEnv() {
	if env.Has(EnvVerbose) {
		c.Verbose = env.Bool(EnvVerbose)
	}
	if env.Has(EnvDebug) {
		c.Debug = env.Bool(EnvDebug)
	}
	if env.Has(EnvSpecialize) {
		c.Specialize = env.Bool(EnvSpecialize)
	}
	c.LanguageVersion = env.Str(EnvLanguageVersion, c.LanguageVersion)
	c.MaxSteps = env.Int64(EnvMaxSteps, c.MaxSteps)
	c.Listen = env.Str(EnvListen, c.Listen)
}

// Validate checks values that cannot be checked while decoding.
func (c *Config) Validate() error {
	if _, err := features.ForVersion(c.LanguageVersion); err != nil {
		return errors.InvalidConfig("language_version", err.Error())
	}
	if c.MaxSteps <= 0 {
		return errors.InvalidConfig("max_steps", fmt.Sprintf("must be positive, was %d", c.MaxSteps))
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.InvalidConfig("cert_file", "cert_file and key_file must be set together")
	}
	return nil
}

// Features resolves the enabled features, with every loop generator switched
// off when specialization is disabled.
func (c *Config) Features() (*features.Set, error) {
	set, err := features.ForVersion(c.LanguageVersion)
	if err != nil {
		return nil, errors.InvalidConfig("language_version", err.Error())
	}
	if !c.Specialize {
		set.Disable(features.ConstBoundedRangeLoops)
		set.Disable(features.SimpleProgressionLoops)
		set.Disable(features.ReversedRangeLoops)
	}
	return set, nil
}

// CodegenOptions derives the lowering options.
func (c *Config) CodegenOptions() (codegen.Options, error) {
	set, err := c.Features()
	if err != nil {
		return codegen.Options{}, err
	}
	return codegen.Options{Loops: set.LoopOptions()}, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
