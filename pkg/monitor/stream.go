package monitor

import (
	"context"

	"github.com/vigilabs/go-vigil/internal/log"
	"github.com/vigilabs/go-vigil/pkg/detect"
	"github.com/vigilabs/go-vigil/pkg/drowsy"
)

// StreamRunner scores landmark frames pushed by an external detector
// stream. Deployments that already run a face+landmark stack feed the
// core this way; no camera, detector, or landmarker is involved.
type StreamRunner struct {
	cfg  Config
	pool *drowsy.Pool

	state   StateUpdater
	onAlert AlertFunc

	// Consecutive empty frames per face; a face is dropped after the
	// tracker's miss tolerance, same policy as the camera pipeline.
	empties map[string]int
}

// NewStreamRunner validates the drowsy config up front.
func NewStreamRunner(cfg Config) (*StreamRunner, error) {
	pool, err := drowsy.NewPool(cfg.Drowsy)
	if err != nil {
		return nil, err
	}
	return &StreamRunner{
		cfg:     cfg,
		pool:    pool,
		empties: make(map[string]int),
	}, nil
}

// SetStateUpdater sets the dashboard state updater.
func (r *StreamRunner) SetStateUpdater(state StateUpdater) {
	r.state = state
}

// OnAlert registers the edge-triggered alert sink.
func (r *StreamRunner) OnAlert(fn AlertFunc) {
	r.onAlert = fn
}

// Run consumes frames until the channel closes or the context ends.
func (r *StreamRunner) Run(ctx context.Context, frames <-chan detect.Frame) {
	log.Info("stream runner started", "frame_threshold", r.cfg.Drowsy.FrameThreshold)
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				log.Info("landmark stream closed")
				return
			}
			r.Consume(frame)
		}
	}
}

// Consume scores one pushed frame.
func (r *StreamRunner) Consume(frame detect.Frame) FaceStatus {
	id := frame.FaceID
	eval := r.pool.Get(id)

	var rep drowsy.FrameReport
	if len(frame.Points) == 0 {
		rep = eval.NoFace()
		r.empties[id]++
		if r.empties[id] > r.cfg.Tracker.MaxMisses {
			r.pool.Release(id)
			delete(r.empties, id)
			if r.state != nil {
				r.state.AddLog("face", "face "+id+" lost")
			}
		}
	} else {
		rep = eval.ObservePoints(frame.Points)
		r.empties[id] = 0
	}

	if rep.Changed && r.onAlert != nil {
		r.onAlert(id, rep.State == drowsy.StateAlerting)
	}

	status := FaceStatus{FaceID: id, Report: rep, State: rep.State.String()}
	if r.state != nil {
		r.state.UpdateFaces([]FaceStatus{status})
	}
	return status
}
