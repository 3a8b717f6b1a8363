package drowsy

// State is the alert level of one tracked face.
type State int

const (
	// StateClear means no alert; the counter may still be nonzero.
	StateClear State = iota
	// StateAlerting means the persistence threshold has been reached.
	StateAlerting
)

func (s State) String() string {
	if s == StateAlerting {
		return "ALERTING"
	}
	return "CLEAR"
}

// Signal is the per-frame input to the machine.
type Signal int

const (
	// SignalNone means no face was detected or the frame's geometry was
	// unusable. It is a distinct input, not "not drowsy".
	SignalNone Signal = iota
	// SignalAwake means usable geometry below the drowsy thresholds.
	SignalAwake
	// SignalDrowsy means EAR below the eye threshold or MAR above the
	// mouth threshold.
	SignalDrowsy
)

func (s Signal) String() string {
	switch s {
	case SignalAwake:
		return "awake"
	case SignalDrowsy:
		return "drowsy"
	default:
		return "none"
	}
}

// Result is the machine's per-frame output.
type Result struct {
	State State `json:"state"`
	// Changed is true exactly once per transition (edge-triggered).
	Changed bool `json:"changed"`
	// Count is the consecutive drowsy frame count after this frame.
	Count int `json:"count"`
}

// Machine is the debouncing alert state machine for a single face.
// It never fails: per-frame geometry problems arrive as SignalNone,
// and the only rejectable input is the configuration at construction.
//
// Not safe for concurrent use; frames are strictly sequential.
type Machine struct {
	cfg      Config
	count    int
	alerting bool
	onChange func(alerting bool)
}

// NewMachine validates cfg and returns a machine in StateClear with a
// zero counter. A ConfigError here is fatal to initialization.
func NewMachine(cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OnNoFace == "" {
		cfg.OnNoFace = PolicyReset
	}
	return &Machine{cfg: cfg}, nil
}

// OnAlertChange registers an edge callback, invoked exactly once per
// raise and once per clear, from within Update.
func (m *Machine) OnAlertChange(fn func(alerting bool)) {
	m.onChange = fn
}

// Update consumes one frame's signal and returns the resulting state.
func (m *Machine) Update(sig Signal) Result {
	was := m.alerting

	switch sig {
	case SignalDrowsy:
		m.count++
		if m.count >= m.cfg.FrameThreshold {
			m.alerting = true
		}
	case SignalAwake:
		// Clears immediately; no hysteresis on the falling edge.
		m.count = 0
		m.alerting = false
	case SignalNone:
		if m.cfg.OnNoFace != PolicyHold {
			m.count = 0
			m.alerting = false
		}
	}

	changed := m.alerting != was
	if changed && m.onChange != nil {
		m.onChange(m.alerting)
	}

	return Result{State: m.State(), Changed: changed, Count: m.count}
}

// State answers the level-triggered query: the current alert state,
// readable every frame.
func (m *Machine) State() State {
	if m.alerting {
		return StateAlerting
	}
	return StateClear
}

// Count returns the current consecutive drowsy frame count.
func (m *Machine) Count() int {
	return m.count
}

// Config returns the active configuration.
func (m *Machine) Config() Config {
	return m.cfg
}

// SetConfig swaps thresholds at runtime. The counter and state carry
// over; the new FrameThreshold applies from the next frame.
func (m *Machine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.OnNoFace == "" {
		cfg.OnNoFace = PolicyReset
	}
	m.cfg = cfg
	return nil
}

// Reset returns the machine to stream-start state.
func (m *Machine) Reset() {
	m.count = 0
	m.alerting = false
}
