package drowsy

import (
	"errors"
	"testing"
)

func mustMachine(t *testing.T, cfg Config) *Machine {
	t.Helper()
	m, err := NewMachine(cfg)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func smallConfig(frames int) Config {
	cfg := DefaultConfig()
	cfg.FrameThreshold = frames
	return cfg
}

func TestMachine_BelowThresholdNeverAlerts(t *testing.T) {
	m := mustMachine(t, smallConfig(5))

	for i := 0; i < 4; i++ {
		res := m.Update(SignalDrowsy)
		if res.State != StateClear || res.Changed {
			t.Fatalf("frame %d: state=%v changed=%v, want CLEAR/false", i, res.State, res.Changed)
		}
	}
	res := m.Update(SignalAwake)
	if res.State != StateClear || res.Changed {
		t.Errorf("awake frame: state=%v changed=%v, want CLEAR/false", res.State, res.Changed)
	}
	if m.Count() != 0 {
		t.Errorf("count=%d after awake frame, want 0", m.Count())
	}
}

func TestMachine_AlertsOnExactlyThresholdFrame(t *testing.T) {
	const frames = 7
	m := mustMachine(t, smallConfig(frames))

	for i := 1; i <= frames; i++ {
		res := m.Update(SignalDrowsy)
		if i < frames {
			if res.State != StateClear || res.Changed {
				t.Fatalf("frame %d: state=%v changed=%v, want CLEAR/false", i, res.State, res.Changed)
			}
			continue
		}
		if res.State != StateAlerting {
			t.Errorf("frame %d: state=%v, want ALERTING", i, res.State)
		}
		if !res.Changed {
			t.Errorf("frame %d: changed=false on the raising edge", i)
		}
	}

	// Staying drowsy keeps alerting without further edges.
	res := m.Update(SignalDrowsy)
	if res.State != StateAlerting || res.Changed {
		t.Errorf("post-threshold frame: state=%v changed=%v, want ALERTING/false", res.State, res.Changed)
	}
}

func TestMachine_ImmediateClear(t *testing.T) {
	for _, sig := range []Signal{SignalAwake, SignalNone} {
		t.Run(sig.String(), func(t *testing.T) {
			m := mustMachine(t, smallConfig(3))
			m.Update(SignalDrowsy)
			m.Update(SignalDrowsy)
			if res := m.Update(SignalDrowsy); res.State != StateAlerting {
				t.Fatalf("setup failed: state=%v", res.State)
			}

			res := m.Update(sig)
			if res.State != StateClear {
				t.Errorf("state=%v after %v frame, want CLEAR", res.State, sig)
			}
			if !res.Changed {
				t.Errorf("changed=false on the clearing edge")
			}
		})
	}
}

// The reference scenario from the drowsiness model: threshold 3,
// inputs [T,T,T,F,T,T,T,T].
func TestMachine_Scenario(t *testing.T) {
	m := mustMachine(t, smallConfig(3))

	inputs := []Signal{
		SignalDrowsy, SignalDrowsy, SignalDrowsy, SignalAwake,
		SignalDrowsy, SignalDrowsy, SignalDrowsy, SignalDrowsy,
	}
	wantStates := []State{
		StateClear, StateClear, StateAlerting, StateClear,
		StateClear, StateClear, StateAlerting, StateAlerting,
	}
	wantChanged := []bool{false, false, true, true, false, false, true, false}

	for i, sig := range inputs {
		res := m.Update(sig)
		if res.State != wantStates[i] {
			t.Errorf("frame %d: state=%v, want %v", i, res.State, wantStates[i])
		}
		if res.Changed != wantChanged[i] {
			t.Errorf("frame %d: changed=%v, want %v", i, res.Changed, wantChanged[i])
		}
	}
}

func TestMachine_NoFaceHoldPolicy(t *testing.T) {
	cfg := smallConfig(3)
	cfg.OnNoFace = PolicyHold
	m := mustMachine(t, cfg)

	m.Update(SignalDrowsy)
	m.Update(SignalDrowsy)

	// Hold: counter survives the gap.
	res := m.Update(SignalNone)
	if res.Count != 2 || res.State != StateClear || res.Changed {
		t.Errorf("hold frame: count=%d state=%v changed=%v, want 2/CLEAR/false", res.Count, res.State, res.Changed)
	}

	res = m.Update(SignalDrowsy)
	if res.State != StateAlerting || !res.Changed {
		t.Errorf("third drowsy frame after hold: state=%v changed=%v, want ALERTING/true", res.State, res.Changed)
	}

	// Hold also keeps an active alert up.
	res = m.Update(SignalNone)
	if res.State != StateAlerting || res.Changed {
		t.Errorf("hold during alert: state=%v changed=%v, want ALERTING/false", res.State, res.Changed)
	}
}

func TestMachine_NoFaceResetPolicy(t *testing.T) {
	m := mustMachine(t, smallConfig(3)) // default policy is reset

	m.Update(SignalDrowsy)
	m.Update(SignalDrowsy)
	res := m.Update(SignalNone)
	if res.Count != 0 {
		t.Errorf("count=%d after no-face under reset policy, want 0", res.Count)
	}

	// Counter starts over.
	m.Update(SignalDrowsy)
	m.Update(SignalDrowsy)
	if m.State() != StateClear {
		t.Errorf("state=%v two frames after reset, want CLEAR", m.State())
	}
}

func TestMachine_EdgeCallback(t *testing.T) {
	m := mustMachine(t, smallConfig(2))

	var edges []bool
	m.OnAlertChange(func(alerting bool) { edges = append(edges, alerting) })

	m.Update(SignalDrowsy)
	m.Update(SignalDrowsy) // raise
	m.Update(SignalDrowsy) // still alerting, no edge
	m.Update(SignalAwake)  // clear

	if len(edges) != 2 || edges[0] != true || edges[1] != false {
		t.Errorf("edges=%v, want [true false]", edges)
	}
}

func TestNewMachine_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"zero frame threshold", func(c *Config) { c.FrameThreshold = 0 }, "frame_threshold"},
		{"negative eye threshold", func(c *Config) { c.EyeThreshold = -0.1 }, "eye_threshold"},
		{"zero mouth threshold", func(c *Config) { c.MouthThreshold = 0 }, "mouth_threshold"},
		{"unknown policy", func(c *Config) { c.OnNoFace = "discard" }, "on_no_face"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mut(&cfg)
			_, err := NewMachine(cfg)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("want ConfigError, got %v", err)
			}
			if cerr.Field != tc.field {
				t.Errorf("error field=%q, want %q", cerr.Field, tc.field)
			}
		})
	}
}

func TestMachine_StateQueryIsLevelTriggered(t *testing.T) {
	m := mustMachine(t, smallConfig(2))
	m.Update(SignalDrowsy)
	m.Update(SignalDrowsy)

	// Repeated queries between frames see the same level.
	for i := 0; i < 3; i++ {
		if m.State() != StateAlerting {
			t.Fatalf("query %d: state=%v, want ALERTING", i, m.State())
		}
	}
}
