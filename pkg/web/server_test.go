package web

import (
	"testing"

	"github.com/vigilabs/go-vigil/pkg/drowsy"
	"github.com/vigilabs/go-vigil/pkg/monitor"
)

type stubMonitor struct {
	cfg drowsy.Config
	err error
}

func (s *stubMonitor) Statuses() []monitor.FaceStatus { return nil }
func (s *stubMonitor) IsRunning() bool                { return true }
func (s *stubMonitor) Thresholds() drowsy.Config      { return s.cfg }
func (s *stubMonitor) UpdateThresholds(cfg drowsy.Config) error {
	if s.err != nil {
		return s.err
	}
	s.cfg = cfg
	return nil
}

func TestUpdateFaces_AlertingFlag(t *testing.T) {
	s := NewServer("0", &stubMonitor{cfg: drowsy.DefaultConfig()})

	s.UpdateFaces([]monitor.FaceStatus{
		{FaceID: "a", Report: drowsy.FrameReport{State: drowsy.StateClear}},
		{FaceID: "b", Report: drowsy.FrameReport{State: drowsy.StateAlerting}},
	})

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if !s.state.Alerting {
		t.Error("state.Alerting=false with one alerting face")
	}
	if len(s.state.Faces) != 2 {
		t.Errorf("faces=%d, want 2", len(s.state.Faces))
	}
}

func TestAddLog_Bounded(t *testing.T) {
	s := NewServer("0", nil)
	for i := 0; i < 600; i++ {
		s.AddLog("info", "entry")
	}

	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	if len(s.logs) != 500 {
		t.Errorf("logs=%d, want capped at 500", len(s.logs))
	}
}
