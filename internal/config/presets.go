package config

import (
	"slices"

	"github.com/san-kum/bodysim/internal/bodymass"
)

// Presets are subject sections; everything else stays at its default.
var Presets = map[string]SubjectConfig{
	"reference": subjectFrom(bodymass.Reference()),
	"male": {
		Days: 365, Mass: 80, Height: 170, Age: 25, Calories: 1500, Activity: 1.3, Sex: "male",
	},
	"surplus": {
		Days: 365, Mass: 70, Height: 175, Age: 30, Calories: 3000, Activity: 1.4, Sex: "male",
	},
	"sedentary": {
		Days: 730, Mass: 95, Height: 165, Age: 50, Calories: 2000, Activity: 1.2, Sex: "female",
	},
	"athlete": {
		Days: 180, Mass: 75, Height: 185, Age: 22, Calories: 3200, Activity: 1.9, Sex: "male",
	},
}

// GetPreset returns the default config with the named subject, or nil.
func GetPreset(name string) *Config {
	subject, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Subject = subject
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
