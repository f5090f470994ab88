package config

import "sort"

// Presets are named starting points for common experiments.
var Presets = map[string]func() *Config{
	// Lions and zebras: the reference run.
	"classic": DefaultConfig,
	"prey-boost": func() *Config {
		cfg := DefaultConfig()
		cfg.Params.A = 0.15
		cfg.Initial = InitialConfig{X0: 40, Y0: 19}
		return cfg
	},
	"logistic": func() *Config {
		cfg := DefaultConfig()
		cfg.Model = "logistic"
		cfg.Params.K = DefaultK
		return cfg
	},
	// Nested cycles around the interior fixed point.
	"orbits": func() *Config {
		cfg := DefaultConfig()
		cfg.Orbits = []InitialConfig{{X0: 30, Y0: 6}, {X0: 35, Y0: 8}, {X0: 50, Y0: 12}}
		cfg.Contour.Values = []float64{0.5, 0.6, 0.7, 0.72, 0.73, 0.74, 0.75, 0.76, 0.77, 0.775, 0.78, 0.781}
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
