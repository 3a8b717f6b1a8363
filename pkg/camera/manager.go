package camera

import (
	"fmt"
	"sync"
)

// Manager is the runtime-settable capture configuration. The dashboard
// mutates it through UpdateConfig; whoever owns the open device hooks
// OnConfigChange to apply the result.
type Manager struct {
	mu  sync.RWMutex
	cfg Config

	// OnConfigChange runs after every accepted update with the new
	// config. An error from it fails the update.
	OnConfigChange func(cfg Config) error
}

// NewManager starts from the default configuration.
func NewManager() *Manager {
	return &Manager{cfg: DefaultConfig()}
}

// GetConfig returns the active configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// SetConfig validates and installs a complete configuration.
func (m *Manager) SetConfig(cfg Config) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid camera config: %v", problems)
	}

	m.mu.Lock()
	m.cfg = cfg
	apply := m.OnConfigChange
	m.mu.Unlock()

	if apply != nil {
		if err := apply(cfg); err != nil {
			return fmt.Errorf("apply camera config: %w", err)
		}
	}
	return nil
}

// UpdateConfig applies a partial update from JSON-decoded parameters.
// A "preset" key loads a named preset first; remaining keys override
// individual fields on top of it.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	cfg := m.GetConfig()

	if name, ok := params["preset"].(string); ok {
		preset := GetPreset(name)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", name)
		}
		cfg = *preset
		delete(params, "preset")
	}

	for key, raw := range params {
		field, err := intParam(key, raw)
		if err != nil {
			return err
		}
		switch key {
		case "device":
			cfg.Device = field
		case "width":
			cfg.Width = field
		case "height":
			cfg.Height = field
		case "framerate":
			cfg.Framerate = field
		case "quality":
			cfg.Quality = field
		default:
			return fmt.Errorf("unknown parameter: %s", key)
		}
	}

	return m.SetConfig(cfg)
}

// intParam coerces a JSON-decoded number. encoding/json hands numbers
// over as float64.
func intParam(key string, raw interface{}) (int, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("parameter %s: want a number, got %T", key, raw)
	}
}
