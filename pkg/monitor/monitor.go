// Package monitor runs go-vigil's per-frame pipeline: capture a frame,
// detect faces, carry identities across frames, fetch landmarks, score
// drowsiness, and publish the result. One frame is fully processed
// before the next is accepted; the scoring core itself never blocks.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vigilabs/go-vigil/internal/log"
	"github.com/vigilabs/go-vigil/pkg/detect"
	"github.com/vigilabs/go-vigil/pkg/drowsy"
	"github.com/vigilabs/go-vigil/pkg/track"
)

// VideoSource captures frames.
type VideoSource interface {
	CaptureJPEG() ([]byte, error)
}

// StateUpdater receives level-triggered per-frame state for rendering.
type StateUpdater interface {
	UpdateFaces(faces []FaceStatus)
	AddLog(logType, message string)
}

// AlertFunc receives edge-triggered alert transitions.
type AlertFunc func(faceID string, alerting bool)

// FaceStatus is one face's per-frame output.
type FaceStatus struct {
	FaceID string             `json:"face_id"`
	Report drowsy.FrameReport `json:"report"`
	State  string             `json:"state"`
	Box    detect.Detection   `json:"-"`
}

// Config holds the pipeline's tunable parameters.
type Config struct {
	// FrameInterval is how often a frame is pulled from the source.
	FrameInterval time.Duration

	// Drowsy configures the alert core; validated at construction.
	Drowsy drowsy.Config

	// Tracker configures face identity tracking.
	Tracker track.Config
}

// DefaultConfig returns the recommended pipeline configuration.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 50 * time.Millisecond, // 20 fps budget
		Drowsy:        drowsy.DefaultConfig(),
		Tracker:       track.DefaultConfig(),
	}
}

// Monitor owns the pipeline. Collaborators are injected so the whole
// thing runs against fakes without a camera.
type Monitor struct {
	cfg        Config
	video      VideoSource
	detector   detect.Detector
	landmarker detect.Landmarker

	tracker *track.Tracker
	pool    *drowsy.Pool

	state   StateUpdater
	onAlert AlertFunc

	mu        sync.RWMutex
	latest    []FaceStatus
	isRunning bool
}

// New validates the drowsy config and wires the pipeline. Configuration
// errors surface here, before any frame is processed.
func New(cfg Config, video VideoSource, detector detect.Detector, landmarker detect.Landmarker) (*Monitor, error) {
	pool, err := drowsy.NewPool(cfg.Drowsy)
	if err != nil {
		return nil, err
	}
	return &Monitor{
		cfg:        cfg,
		video:      video,
		detector:   detector,
		landmarker: landmarker,
		tracker:    track.New(cfg.Tracker),
		pool:       pool,
	}, nil
}

// SetStateUpdater sets the dashboard state updater.
func (m *Monitor) SetStateUpdater(state StateUpdater) {
	m.state = state
}

// OnAlert registers the edge-triggered alert sink.
func (m *Monitor) OnAlert(fn AlertFunc) {
	m.onAlert = fn
}

// Run pulls frames on a ticker until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.FrameInterval)
	defer ticker.Stop()

	m.mu.Lock()
	m.isRunning = true
	m.mu.Unlock()

	log.Info("monitor started",
		"frame_interval", m.cfg.FrameInterval,
		"frame_threshold", m.cfg.Drowsy.FrameThreshold,
		"eye_threshold", m.cfg.Drowsy.EyeThreshold,
		"mouth_threshold", m.cfg.Drowsy.MouthThreshold)

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.isRunning = false
			m.mu.Unlock()
			log.Info("monitor stopped")
			return

		case <-ticker.C:
			if _, err := m.Step(); err != nil {
				log.Warn("frame skipped", "error", err)
			}
		}
	}
}

// Step processes exactly one frame and returns the per-face statuses.
// Exposed so replay and tests can drive the pipeline frame by frame.
func (m *Monitor) Step() ([]FaceStatus, error) {
	jpeg, err := m.video.CaptureJPEG()
	if err != nil {
		return nil, err
	}

	dets, err := m.detector.Detect(jpeg)
	if err != nil {
		// A failed detection carries no evidence either way; the
		// frame proceeds with zero detections so tracked faces age.
		log.Warn("detection failed", "error", err)
		dets = nil
	}

	up := m.tracker.Observe(dets)

	for _, id := range up.Forgotten {
		m.pool.Release(id)
		m.logf("face", "face %s lost", id)
	}

	statuses := make([]FaceStatus, 0, len(up.Seen)+len(up.Missed))

	for id, det := range up.Seen {
		eval := m.pool.Get(id)

		var rep drowsy.FrameReport
		set, lerr := m.landmarker.Landmarks(jpeg, det)
		if lerr != nil {
			log.Warn("landmarks unavailable, frame degraded to no-signal",
				"face", id, "error", lerr)
			rep = eval.NoFace()
		} else {
			rep = eval.Observe(&set)
		}

		statuses = append(statuses, m.faceStatus(id, rep))
	}

	// Faces still tracked but unseen this frame: a distinct no-signal
	// input, not "awake".
	for _, id := range up.Missed {
		eval := m.pool.Get(id)
		statuses = append(statuses, m.faceStatus(id, eval.NoFace()))
	}

	m.mu.Lock()
	m.latest = statuses
	m.mu.Unlock()

	if m.state != nil {
		m.state.UpdateFaces(statuses)
	}

	return statuses, nil
}

// faceStatus assembles one face's status and fires alert edges.
func (m *Monitor) faceStatus(id string, rep drowsy.FrameReport) FaceStatus {
	if rep.Changed {
		alerting := rep.State == drowsy.StateAlerting
		if alerting {
			m.logf("alert", "DROWSINESS ALERT raised for face %s (EAR=%.3f MAR=%.3f)", id, rep.EAR, rep.MAR)
		} else {
			m.logf("alert", "alert cleared for face %s", id)
		}
		if m.onAlert != nil {
			m.onAlert(id, alerting)
		}
	}

	status := FaceStatus{FaceID: id, Report: rep, State: rep.State.String()}
	if tr, ok := m.tracker.Lookup(id); ok {
		status.Box = tr.Box
	}
	return status
}

// Statuses answers the level-triggered query: the most recent
// per-face states.
func (m *Monitor) Statuses() []FaceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FaceStatus, len(m.latest))
	copy(out, m.latest)
	return out
}

// IsRunning reports whether the frame loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

// UpdateThresholds applies new alert thresholds to every tracked face.
func (m *Monitor) UpdateThresholds(cfg drowsy.Config) error {
	if err := m.pool.SetConfig(cfg); err != nil {
		return err
	}
	m.logf("config", "thresholds updated: eye=%.3f mouth=%.3f frames=%d",
		cfg.EyeThreshold, cfg.MouthThreshold, cfg.FrameThreshold)
	return nil
}

// Thresholds returns the active alert configuration.
func (m *Monitor) Thresholds() drowsy.Config {
	return m.pool.Config()
}

func (m *Monitor) logf(logType, format string, args ...any) {
	if m.state != nil {
		m.state.AddLog(logType, fmt.Sprintf(format, args...))
	}
}
