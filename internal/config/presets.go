package config

import "sort"

// Presets are applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	// rig is the reference build as shipped.
	"rig": func(c *Config) {},
	// bench runs the drives at full speed for quick dry runs.
	"bench": func(c *Config) {
		c.Drive.MaxSpeed = 4000
		c.Drive.Acceleration = 4000
		c.Drive.StopAcceleration = 40000
		c.Run.Timeout = 30
	},
	// demo is a longer arm with slow drives, for the live view.
	"demo": func(c *Config) {
		c.Geometry = GeometryConfig{L1: 60, L2: 45}
		c.Drive.MaxSpeed = 600
		c.Drive.Acceleration = 300
		c.Drive.StopAcceleration = 6000
		c.Run.SampleEvery = 20
		c.Run.ScanPoints = 40
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
