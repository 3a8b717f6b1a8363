package drowsy

import (
	"github.com/vigilabs/go-vigil/internal/log"
	"github.com/vigilabs/go-vigil/pkg/landmarks"
	"github.com/vigilabs/go-vigil/pkg/ratio"
)

// FrameReport is the per-face, per-frame output handed to the renderer
// and logger. EAR/MAR are zero when Signal is SignalNone.
type FrameReport struct {
	EAR     float64 `json:"ear"`
	MAR     float64 `json:"mar"`
	Signal  Signal  `json:"-"`
	State   State   `json:"-"`
	Changed bool    `json:"changed"`
	Count   int     `json:"count"`
}

// Evaluator scores one face's landmark sets frame by frame: geometry
// ratios first, then the debounce machine. Geometry errors degrade to
// SignalNone and never halt the stream.
type Evaluator struct {
	machine *Machine
}

// NewEvaluator validates cfg and builds an evaluator for one face.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	m, err := NewMachine(cfg)
	if err != nil {
		return nil, err
	}
	return &Evaluator{machine: m}, nil
}

// Observe scores one frame's landmark set.
func (e *Evaluator) Observe(s *landmarks.Set) FrameReport {
	ear, err := ratio.CombinedEAR(s)
	if err != nil {
		log.Warn("frame degraded to no-signal", "reason", err)
		return e.NoFace()
	}
	mar, err := ratio.MouthAspectRatio(s.Mouth())
	if err != nil {
		log.Warn("frame degraded to no-signal", "reason", err)
		return e.NoFace()
	}

	cfg := e.machine.Config()
	sig := SignalAwake
	if ear < cfg.EyeThreshold || mar > cfg.MouthThreshold {
		sig = SignalDrowsy
	}

	res := e.machine.Update(sig)
	return FrameReport{
		EAR:     ear,
		MAR:     mar,
		Signal:  sig,
		State:   res.State,
		Changed: res.Changed,
		Count:   res.Count,
	}
}

// ObservePoints validates a raw detector slice first; a wrong point
// count degrades the frame to no-signal.
func (e *Evaluator) ObservePoints(pts []landmarks.Point2D) FrameReport {
	s, err := landmarks.FromSlice(pts)
	if err != nil {
		log.Warn("frame degraded to no-signal", "reason", err)
		return e.NoFace()
	}
	return e.Observe(&s)
}

// NoFace consumes a frame in which this face was not detected.
func (e *Evaluator) NoFace() FrameReport {
	res := e.machine.Update(SignalNone)
	return FrameReport{
		Signal:  SignalNone,
		State:   res.State,
		Changed: res.Changed,
		Count:   res.Count,
	}
}

// State answers the level-triggered alert query.
func (e *Evaluator) State() State {
	return e.machine.State()
}

// Machine exposes the underlying machine for edge callbacks and
// runtime config updates.
func (e *Evaluator) Machine() *Machine {
	return e.machine
}
