package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/sweep"
)

const (
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.011
	DefaultFormat     = "term"
	DefaultWidth      = 8.0
	DefaultHeight     = 6.0
)

type Config struct {
	Subject    SubjectConfig `yaml:"subject"`
	Integrator string        `yaml:"integrator"`
	Dt         float64       `yaml:"dt"`
	Sweep      SweepConfig   `yaml:"sweep"`
	Output     OutputConfig  `yaml:"output"`
}

type SubjectConfig struct {
	Days     int     `yaml:"days"`
	Mass     float64 `yaml:"mass"`
	Height   float64 `yaml:"height"`
	Age      int     `yaml:"age"`
	Calories float64 `yaml:"calories"`
	Activity float64 `yaml:"activity"`
	Sex      string  `yaml:"sex"`
}

type SweepConfig struct {
	Base      float64  `yaml:"base"`
	Increment float64  `yaml:"increment"`
	Count     int      `yaml:"count"`
	Horizon   int      `yaml:"horizon"`
	Reference string   `yaml:"reference"`
	Methods   []string `yaml:"methods,flow"`
}

// OutputConfig sizes file charts in inches; terminal charts ignore it.
type OutputConfig struct {
	Format string  `yaml:"format"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	ref := bodymass.Reference()
	sw := sweep.DefaultConfig()
	return &Config{
		Subject:    subjectFrom(ref),
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Sweep: SweepConfig{
			Base:      sw.Base,
			Increment: sw.Increment,
			Count:     sw.Count,
			Horizon:   sw.Horizon,
			Reference: sw.Reference.String(),
			Methods:   sw.Methods,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

func subjectFrom(p bodymass.Params) SubjectConfig {
	return SubjectConfig{
		Days:     p.Days,
		Mass:     p.Mass,
		Height:   p.Height,
		Age:      p.Age,
		Calories: p.Calories,
		Activity: p.Activity,
		Sex:      p.Sex.String(),
	}
}

// Load overlays the file at path on top of base; keys missing from the file
// keep base's values. A nil base means DefaultConfig.
func Load(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if base != nil {
		cp := *base
		cp.Sweep.Methods = append([]string(nil), base.Sweep.Methods...)
		cfg = &cp
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the subject section and validates it.
func (c *Config) Params() (bodymass.Params, error) {
	sex, err := bodymass.ParseSex(c.Subject.Sex)
	if err != nil {
		return bodymass.Params{}, err
	}
	p := bodymass.Params{
		Days:     c.Subject.Days,
		Mass:     c.Subject.Mass,
		Height:   c.Subject.Height,
		Age:      c.Subject.Age,
		Calories: c.Subject.Calories,
		Activity: c.Subject.Activity,
		Sex:      sex,
	}
	if err := p.Validate(); err != nil {
		return bodymass.Params{}, err
	}
	return p, nil
}

func (c *Config) SweepConfig() (sweep.Config, error) {
	ref, err := sweep.ParseReference(c.Sweep.Reference)
	if err != nil {
		return sweep.Config{}, err
	}
	cfg := sweep.Config{
		Base:      c.Sweep.Base,
		Increment: c.Sweep.Increment,
		Count:     c.Sweep.Count,
		Horizon:   c.Sweep.Horizon,
		Reference: ref,
		Methods:   append([]string(nil), c.Sweep.Methods...),
	}
	return cfg, cfg.Validate()
}
