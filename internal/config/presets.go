package config

import (
	"sort"

	"github.com/san-kum/nbodysim/internal/gravity"
	"github.com/san-kum/nbodysim/internal/tick"
)

func preset(sceneName string, n, steps, sample int, g GravityConfig) *Config {
	if g.G == 0 {
		g.G = gravity.DefaultG
	}
	if g.Mode == "" {
		g.Mode = gravity.Impulse.String()
	}
	return &Config{
		Scene:       sceneName,
		NumBodies:   n,
		Rate:        tick.DefaultRate,
		Steps:       steps,
		SampleEvery: sample,
		Gravity:     g,
	}
}

var Presets = map[string]map[string]*Config{
	"grid": {
		"reference": preset("grid", 20, 600, 6, GravityConfig{}),
		"dense":     preset("grid", 30, 600, 10, GravityConfig{Workers: 4}),
		"softened":  preset("grid", 20, 1200, 10, GravityConfig{MinSeparation: 5}),
	},
	"binary": {
		"reference": preset("binary", 0, 60, 1, GravityConfig{}),
		"newtonian": preset("binary", 0, 600, 5, GravityConfig{Mode: "newtonian"}),
	},
	"mirror": {
		"default": preset("mirror", 0, 600, 5, GravityConfig{}),
	},
	"single": {
		"coast": preset("single", 0, 300, 10, GravityConfig{}),
	},
	"ring": {
		"small": preset("ring", 8, 600, 5, GravityConfig{}),
		"large": preset("ring", 64, 600, 10, GravityConfig{Workers: 4, MinSeparation: 1}),
	},
	"random": {
		"cluster": preset("random", 200, 600, 10, GravityConfig{Workers: 4, MinSeparation: 2}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(sceneName, name string) *Config {
	scenePresets, ok := Presets[sceneName]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(sceneName string) []string {
	scenePresets, ok := Presets[sceneName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
