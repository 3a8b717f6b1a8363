package camera

// Named capture presets, selectable through the dashboard API.
// "low" suits weak hardware, "1080p" wide cabin cameras, and "night"
// trades frame rate for exposure time in dark cabins.
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset1080p   = "1080p"
	PresetNight   = "night"
)

// Presets returns the preset table. Callers get a fresh map.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetLow:     {Device: 0, Width: 640, Height: 480, Framerate: 15, Quality: 85},
		Preset1080p:   {Device: 0, Width: 1920, Height: 1080, Framerate: 30, Quality: 85},
		PresetNight:   {Device: 0, Width: 1280, Height: 720, Framerate: 10, Quality: 90},
	}
}

// PresetNames lists the preset names in display order.
func PresetNames() []string {
	return []string{PresetDefault, PresetLow, Preset1080p, PresetNight}
}

// GetPreset looks a preset up by name; nil if the name is unknown.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}
