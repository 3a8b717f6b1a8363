package drowsy

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EyeThreshold != 0.25 {
		t.Errorf("EyeThreshold=%v, want 0.25", cfg.EyeThreshold)
	}
	if cfg.MouthThreshold != 0.6 {
		t.Errorf("MouthThreshold=%v, want 0.6", cfg.MouthThreshold)
	}
	if cfg.FrameThreshold != 20 {
		t.Errorf("FrameThreshold=%v, want 20", cfg.FrameThreshold)
	}
	if cfg.OnNoFace != PolicyReset {
		t.Errorf("OnNoFace=%v, want reset", cfg.OnNoFace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	presets := map[string]Config{
		"default": DefaultConfig(),
		"strict":  StrictConfig(),
		"relaxed": RelaxedConfig(),
	}
	for name, cfg := range presets {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s preset invalid: %v", name, err)
		}
	}

	// Strict should trip faster than default, relaxed slower.
	if StrictConfig().FrameThreshold >= DefaultConfig().FrameThreshold {
		t.Error("strict preset should have a shorter persistence window than default")
	}
	if RelaxedConfig().FrameThreshold <= DefaultConfig().FrameThreshold {
		t.Error("relaxed preset should have a longer persistence window than default")
	}
}

func TestFramesFor(t *testing.T) {
	tests := []struct {
		window time.Duration
		fps    float64
		want   int
	}{
		{2 * time.Second, 30, 60},
		{667 * time.Millisecond, 30, 20},
		{time.Second, 10, 10},
		{100 * time.Millisecond, 5, 3}, // floor
	}
	for _, tc := range tests {
		if got := FramesFor(tc.window, tc.fps); got != tc.want {
			t.Errorf("FramesFor(%v, %v) = %d, want %d", tc.window, tc.fps, got, tc.want)
		}
	}
}
