// Package drowsy turns per-frame facial geometry into a debounced
// drowsiness alert.
//
// A Machine consumes one tri-valued signal per frame (drowsy, awake, or
// no usable signal) and requires FrameThreshold consecutive drowsy
// frames before alerting, which suppresses single-frame noise. One
// Machine tracks one face; Pool manages a machine per tracked face.
package drowsy

import (
	"fmt"
	"math"
	"time"
)

// NoFacePolicy selects what a frame with no usable signal does to the
// debounce counter. The source material is ambiguous here, so both
// behaviors are exposed.
type NoFacePolicy string

const (
	// PolicyReset clears the counter and any active alert: without a
	// face there is no evidence of drowsiness. This is the default.
	PolicyReset NoFacePolicy = "reset"

	// PolicyHold leaves counter and state untouched until a usable
	// frame arrives.
	PolicyHold NoFacePolicy = "hold"
)

// Config holds the alert thresholds. These can be updated at runtime
// through the dashboard API; every update is re-validated.
type Config struct {
	// EyeThreshold is the EAR below which eyes count as closing.
	EyeThreshold float64 `json:"eye_threshold"`

	// MouthThreshold is the MAR above which the mouth counts as a yawn.
	MouthThreshold float64 `json:"mouth_threshold"`

	// FrameThreshold is how many consecutive drowsy frames raise the
	// alert. Persistence is frame-count based, not wall-clock based, so
	// frame rate variance shifts real trigger latency; see FramesFor.
	FrameThreshold int `json:"frame_threshold"`

	// OnNoFace selects the no-usable-signal policy.
	OnNoFace NoFacePolicy `json:"on_no_face"`
}

// DefaultConfig returns the recommended thresholds.
func DefaultConfig() Config {
	return Config{
		EyeThreshold:   0.25,
		MouthThreshold: 0.6,
		FrameThreshold: 20,
		OnNoFace:       PolicyReset,
	}
}

// StrictConfig trips earlier: tighter eye threshold, shorter persistence.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.EyeThreshold = 0.27
	cfg.MouthThreshold = 0.55
	cfg.FrameThreshold = 12
	return cfg
}

// RelaxedConfig tolerates more before alerting.
func RelaxedConfig() Config {
	cfg := DefaultConfig()
	cfg.EyeThreshold = 0.21
	cfg.MouthThreshold = 0.7
	cfg.FrameThreshold = 35
	return cfg
}

// ConfigError reports an invalid configuration value. It is the only
// error in the package that prevents processing from starting.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("drowsy: invalid config: %s = %v", e.Field, e.Value)
}

// Validate checks the config before any frame is processed. Values are
// rejected, never clamped.
func (c Config) Validate() error {
	if c.EyeThreshold <= 0 || math.IsInf(c.EyeThreshold, 1) || math.IsNaN(c.EyeThreshold) {
		return &ConfigError{Field: "eye_threshold", Value: c.EyeThreshold}
	}
	if c.MouthThreshold <= 0 || math.IsInf(c.MouthThreshold, 1) || math.IsNaN(c.MouthThreshold) {
		return &ConfigError{Field: "mouth_threshold", Value: c.MouthThreshold}
	}
	if c.FrameThreshold < 1 {
		return &ConfigError{Field: "frame_threshold", Value: c.FrameThreshold}
	}
	switch c.OnNoFace {
	case PolicyReset, PolicyHold, "":
	default:
		return &ConfigError{Field: "on_no_face", Value: c.OnNoFace}
	}
	return nil
}

// FramesFor converts a wall-clock persistence window at an observed
// frame rate into a FrameThreshold, with a floor of 3 frames to avoid
// flapping on slow cameras.
func FramesFor(window time.Duration, fps float64) int {
	frames := int(window.Seconds() * fps)
	if frames < 3 {
		frames = 3
	}
	return frames
}
