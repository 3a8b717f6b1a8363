package drowsy

import (
	"math"
	"testing"

	"github.com/vigilabs/go-vigil/pkg/landmarks"
)

// faceSet builds a synthetic 68-point set whose eyes have the given
// EAR and whose mouth has the given MAR. Eye width is fixed at 4, so
// lid separation is 4*ear; mouth width is fixed at 6.
func faceSet(ear, mar float64) *landmarks.Set {
	var s landmarks.Set

	placeEye := func(start int, sep float64) {
		s[start+0] = landmarks.Point2D{X: 0, Y: 0}
		s[start+1] = landmarks.Point2D{X: 4.0 / 3, Y: sep / 2}
		s[start+2] = landmarks.Point2D{X: 8.0 / 3, Y: sep / 2}
		s[start+3] = landmarks.Point2D{X: 4, Y: 0}
		s[start+4] = landmarks.Point2D{X: 8.0 / 3, Y: -sep / 2}
		s[start+5] = landmarks.Point2D{X: 4.0 / 3, Y: -sep / 2}
	}
	placeEye(landmarks.LeftEyeStart, 4*ear)
	placeEye(landmarks.RightEyeStart, 4*ear)

	s[landmarks.MouthStart+0] = landmarks.Point2D{X: 0, Y: 0}
	s[landmarks.MouthStart+6] = landmarks.Point2D{X: 6, Y: 0}
	s[landmarks.MouthStart+2] = landmarks.Point2D{X: 3, Y: 3 * mar}
	s[landmarks.MouthStart+10] = landmarks.Point2D{X: 3, Y: -3 * mar}
	return &s
}

func mustEvaluator(t *testing.T, cfg Config) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(cfg)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestEvaluator_ReportsRatios(t *testing.T) {
	e := mustEvaluator(t, DefaultConfig())

	rep := e.Observe(faceSet(0.3, 0.4))
	if math.Abs(rep.EAR-0.3) > 1e-9 {
		t.Errorf("EAR=%v, want 0.3", rep.EAR)
	}
	if math.Abs(rep.MAR-0.4) > 1e-9 {
		t.Errorf("MAR=%v, want 0.4", rep.MAR)
	}
	if rep.Signal != SignalAwake {
		t.Errorf("signal=%v, want awake", rep.Signal)
	}
}

func TestEvaluator_DrowsyConditions(t *testing.T) {
	tests := []struct {
		name     string
		ear, mar float64
		want     Signal
	}{
		{"eyes open, mouth closed", 0.32, 0.1, SignalAwake},
		{"eyes closing", 0.18, 0.1, SignalDrowsy},
		{"yawning", 0.32, 0.75, SignalDrowsy},
		{"both", 0.18, 0.75, SignalDrowsy},
		{"at eye threshold", 0.25, 0.1, SignalAwake},  // strict less-than
		{"at mouth threshold", 0.32, 0.6, SignalAwake}, // strict greater-than
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := mustEvaluator(t, DefaultConfig())
			rep := e.Observe(faceSet(tc.ear, tc.mar))
			if rep.Signal != tc.want {
				t.Errorf("ear=%v mar=%v: signal=%v, want %v", tc.ear, tc.mar, rep.Signal, tc.want)
			}
		})
	}
}

func TestEvaluator_DegenerateGeometryIsNoSignal(t *testing.T) {
	cfg := smallConfig(2)
	cfg.OnNoFace = PolicyHold
	e := mustEvaluator(t, cfg)

	e.Observe(faceSet(0.1, 0.1)) // drowsy, count 1

	// Collapse the left eye corners: degenerate frame.
	s := faceSet(0.1, 0.1)
	s[landmarks.LeftEyeStart+3] = s[landmarks.LeftEyeStart]
	rep := e.Observe(s)
	if rep.Signal != SignalNone {
		t.Fatalf("signal=%v for degenerate frame, want none", rep.Signal)
	}
	// Under hold, the counter survives; degenerate is not "awake".
	if rep.Count != 1 {
		t.Errorf("count=%d after degenerate frame under hold, want 1", rep.Count)
	}
}

func TestEvaluator_WrongPointCountIsNoSignal(t *testing.T) {
	e := mustEvaluator(t, DefaultConfig())
	rep := e.ObservePoints(make([]landmarks.Point2D, 42))
	if rep.Signal != SignalNone {
		t.Errorf("signal=%v for short landmark slice, want none", rep.Signal)
	}
}

func TestEvaluator_AlertsThroughFullPipeline(t *testing.T) {
	e := mustEvaluator(t, smallConfig(3))

	drowsy := faceSet(0.1, 0.1)
	e.Observe(drowsy)
	e.Observe(drowsy)
	rep := e.Observe(drowsy)
	if rep.State != StateAlerting || !rep.Changed {
		t.Errorf("third drowsy frame: state=%v changed=%v, want ALERTING/true", rep.State, rep.Changed)
	}

	rep = e.Observe(faceSet(0.35, 0.1))
	if rep.State != StateClear || !rep.Changed {
		t.Errorf("awake frame: state=%v changed=%v, want CLEAR/true", rep.State, rep.Changed)
	}
}
