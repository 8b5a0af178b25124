package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/cadence"
)

// validate is the shared validator instance for daemon config.
var validate = validator.New()

// Config is the top-level YAML configuration for the cadenced daemon.
//
// The config file is the primary configuration surface; flags exist for small
// overrides. Defaults and validation are centralized here so the rest of the
// daemon can assume a well-formed config.
type Config struct {
	// Listen is the HTTP listen address for the WebSocket edge feed.
	Listen string `yaml:"listen" validate:"required"`

	// Settings configures the persisted cadence settings store.
	Settings SettingsConfig `yaml:"settings"`

	// Bindings maps the two pair directions to key combos.
	Bindings BindingsConfig `yaml:"bindings"`

	// Quantity configures the simulated bounded quantity each connection
	// controls.
	Quantity QuantityConfig `yaml:"quantity"`

	// Logging configures slog output.
	Logging LoggingConfig `yaml:"logging"`
}

type SettingsConfig struct {
	// Path is the YAML settings file backing the store.
	Path string `yaml:"path" validate:"required"`

	// Group overrides the storage group name. Empty means the default.
	Group string `yaml:"group,omitempty"`
}

type BindingsConfig struct {
	Increase string `yaml:"increase" validate:"required"`
	Decrease string `yaml:"decrease" validate:"required"`
}

// QuantityConfig bounds the per-connection simulated quantity. The bounds
// matter: they are what exercises the stall safety stop when a client pins
// the value at a limit.
type QuantityConfig struct {
	Initial float64 `yaml:"initial"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max" validate:"gtfield=Min"`
	Step    float64 `yaml:"step" validate:"gt=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=error warn info debug"`
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	return Config{
		Listen: "127.0.0.1:8787",
		Settings: SettingsConfig{
			Path: "~/.config/cadence/settings.yaml",
		},
		Bindings: BindingsConfig{
			Increase: "ctrl+plus",
			Decrease: "ctrl+minus",
		},
		Quantity: QuantityConfig{
			Initial: 40,
			Min:     1,
			Max:     1000,
			Step:    1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file on top of the defaults.
// Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Only whitespace/comments may follow the document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies flag values on top of a loaded config. A nil pointer
// means the flag was not set.
type FlagOverrides struct {
	Listen       *string
	SettingsPath *string
	LogLevel     *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.Listen != nil {
		cfg.Listen = *o.Listen
	}
	if o.SettingsPath != nil {
		cfg.Settings.Path = *o.SettingsPath
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error. Call
// after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Quantity.Initial < c.Quantity.Min || c.Quantity.Initial > c.Quantity.Max {
		return fmt.Errorf("quantity.initial %v outside [%v, %v]", c.Quantity.Initial, c.Quantity.Min, c.Quantity.Max)
	}
	if _, _, err := c.Combos(); err != nil {
		return err
	}
	return nil
}

// Combos parses the configured bindings.
func (c *Config) Combos() (up, down cadence.Combo, err error) {
	up, err = cadence.ParseCombo(c.Bindings.Increase)
	if err != nil {
		return up, down, fmt.Errorf("bindings.increase: %w", err)
	}
	down, err = cadence.ParseCombo(c.Bindings.Decrease)
	if err != nil {
		return up, down, fmt.Errorf("bindings.decrease: %w", err)
	}
	if up == down {
		return up, down, errors.New("bindings.increase and bindings.decrease must differ")
	}
	return up, down, nil
}

// ExpandPath expands a leading "~" in a path using the home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
