package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadenced.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
	up, down, err := cfg.Combos()
	if err != nil {
		t.Fatalf("default bindings must parse, got %v", err)
	}
	if up == down {
		t.Error("expected distinct default combos")
	}
}

func TestLoadConfigFile_OverlaysDefaults(t *testing.T) {
	path := writeTempConfig(t, `
listen: "0.0.0.0:9000"
quantity:
  initial: 100
`)
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("expected listen override, got %q", cfg.Listen)
	}
	if cfg.Quantity.Initial != 100 {
		t.Errorf("expected quantity.initial 100, got %v", cfg.Quantity.Initial)
	}
	// Untouched fields keep their defaults.
	if cfg.Bindings.Increase != "ctrl+plus" {
		t.Errorf("expected default increase binding, got %q", cfg.Bindings.Increase)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigFile_RejectsUnknownFields(t *testing.T) {
	path := writeTempConfig(t, `
listen: "127.0.0.1:9000"
listne_typo: true
`)
	_, err := LoadConfigFile(path)
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestLoadConfigFile_RejectsTrailingDocument(t *testing.T) {
	path := writeTempConfig(t, `
listen: "127.0.0.1:9000"
---
listen: "127.0.0.1:9001"
`)
	_, err := LoadConfigFile(path)
	if err == nil {
		t.Fatal("expected trailing document to be rejected")
	}
}

func TestFlagOverrides_Apply(t *testing.T) {
	cfg := DefaultConfig()
	listen := "127.0.0.1:9999"
	level := "debug"
	FlagOverrides{Listen: &listen, LogLevel: &level}.Apply(&cfg)

	if cfg.Listen != listen {
		t.Errorf("expected listen override, got %q", cfg.Listen)
	}
	if cfg.Logging.Level != level {
		t.Errorf("expected log level override, got %q", cfg.Logging.Level)
	}
	if cfg.Settings.Path != DefaultConfig().Settings.Path {
		t.Errorf("expected settings path untouched, got %q", cfg.Settings.Path)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero step", func(c *Config) { c.Quantity.Step = 0 }},
		{"max below min", func(c *Config) { c.Quantity.Min = 10; c.Quantity.Max = 5; c.Quantity.Initial = 7 }},
		{"initial out of range", func(c *Config) { c.Quantity.Initial = 5000 }},
		{"bad increase binding", func(c *Config) { c.Bindings.Increase = "bogus+e" }},
		{"identical bindings", func(c *Config) { c.Bindings.Decrease = c.Bindings.Increase }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got := ExpandPath("~/x/y.yaml")
	if !strings.HasPrefix(got, home) {
		t.Errorf("expected %q under %q", got, home)
	}
	if ExpandPath("/abs/path") != "/abs/path" {
		t.Error("expected absolute path untouched")
	}
	if ExpandPath("") != "" {
		t.Error("expected empty path untouched")
	}
}
