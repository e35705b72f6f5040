package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/sweep"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p != bodymass.Reference() {
		t.Errorf("expected reference params, got %+v", p)
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}

	sw, err := cfg.SweepConfig()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(sw.Steps()) != 9 || sw.Reference != sweep.Endpoint {
		t.Errorf("unexpected sweep %+v", sw)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodysim.yaml")

	cfg := DefaultConfig()
	cfg.Subject.Sex = "male"
	cfg.Subject.Calories = 2200
	cfg.Sweep.Count = 4
	cfg.Sweep.Reference = "horizon"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Subject != cfg.Subject {
		t.Errorf("subject mismatch: %+v vs %+v", loaded.Subject, cfg.Subject)
	}
	if !slices.Equal(loaded.Sweep.Methods, cfg.Sweep.Methods) || loaded.Sweep.Count != 4 {
		t.Errorf("sweep mismatch: %+v", loaded.Sweep)
	}
}

func TestLoadPartialKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("subject:\n  calories: 1800\ndt: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("athlete")
	cfg, err := Load(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Subject.Calories != 1800 || cfg.Dt != 0.5 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Subject.Height != 185 || cfg.Subject.Sex != "male" {
		t.Errorf("preset values lost: %+v", cfg.Subject)
	}
	if base.Subject.Calories != 3200 {
		t.Error("base was modified")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParamsRejectsBadSubject(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"sex", func(c *Config) { c.Subject.Sex = "x" }, bodymass.ErrInvalidSex},
		{"activity", func(c *Config) { c.Subject.Activity = 0 }, bodymass.ErrDegenerateActivity},
		{"mass", func(c *Config) { c.Subject.Mass = -1 }, bodymass.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if _, err := cfg.Params(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSweepConfigRejectsUnknownReference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sweep.Reference = "midpoint"
	if _, err := cfg.SweepConfig(); err == nil {
		t.Error("expected error for unknown reference")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("male")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Sex != bodymass.Male {
		t.Errorf("expected male, got %v", p.Sex)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		if _, err := GetPreset(name).Params(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"athlete", "male", "reference", "sedentary", "surplus"}
	if !slices.Equal(presets, want) {
		t.Errorf("expected %v, got %v", want, presets)
	}
}
