// Package track assigns stable identities to faces across frames so
// each face gets its own independent alert state. Association is
// nearest-neighbor with a spatial-consistency gate, box positions are
// EMA-smoothed, and a face survives a few missed frames before its
// identity is forgotten.
package track

import (
	"math"

	"github.com/google/uuid"

	"github.com/vigilabs/go-vigil/pkg/detect"
)

// Config holds the tracker's tunable parameters.
type Config struct {
	// Smoothing is the EMA factor applied to box positions
	// (0-1, higher = more weight on the new detection).
	Smoothing float64

	// MaxJump is the largest center displacement (normalized units)
	// still considered the same face between consecutive frames.
	MaxJump float64

	// MaxMisses is how many consecutive unseen frames a face survives
	// before its identity is forgotten.
	MaxMisses int
}

// DefaultConfig returns parameters tuned for a near-field driver camera.
func DefaultConfig() Config {
	return Config{
		Smoothing: 0.3,
		MaxJump:   0.3,
		MaxMisses: 15,
	}
}

// Track is one face identity.
type Track struct {
	ID     string
	Box    detect.Detection // EMA-smoothed
	Misses int              // consecutive frames unseen
}

// Update is the outcome of one frame of association.
type Update struct {
	// Seen maps face ID to this frame's raw detection.
	Seen map[string]detect.Detection
	// Missed lists faces still tracked but unseen this frame.
	Missed []string
	// Forgotten lists faces dropped this frame; their alert state
	// should be discarded.
	Forgotten []string
}

// Tracker carries face identities across frames. Not safe for
// concurrent use; frames are strictly sequential.
type Tracker struct {
	cfg    Config
	tracks map[string]*Track
}

// New creates an empty tracker.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		tracks: make(map[string]*Track),
	}
}

// Observe associates one frame's detections with known identities,
// creating new identities for unmatched detections.
func (t *Tracker) Observe(dets []detect.Detection) Update {
	up := Update{Seen: make(map[string]detect.Detection, len(dets))}

	claimed := make([]bool, len(dets))

	// Greedy nearest-neighbor: each track claims its closest
	// unclaimed detection within the jump gate.
	for id, tr := range t.tracks {
		best := -1
		bestDist := t.cfg.MaxJump
		tx, ty := tr.Box.Center()
		for i, d := range dets {
			if claimed[i] {
				continue
			}
			dx, dy := d.Center()
			dist := math.Hypot(dx-tx, dy-ty)
			if dist <= bestDist {
				best = i
				bestDist = dist
			}
		}

		if best < 0 {
			continue
		}
		claimed[best] = true
		t.smooth(tr, dets[best])
		tr.Misses = 0
		up.Seen[id] = dets[best]
	}

	// Unclaimed detections become new identities.
	for i, d := range dets {
		if claimed[i] {
			continue
		}
		id := uuid.NewString()
		t.tracks[id] = &Track{ID: id, Box: d}
		up.Seen[id] = d
	}

	// Age out the rest.
	for id, tr := range t.tracks {
		if _, ok := up.Seen[id]; ok {
			continue
		}
		tr.Misses++
		if tr.Misses > t.cfg.MaxMisses {
			delete(t.tracks, id)
			up.Forgotten = append(up.Forgotten, id)
		} else {
			up.Missed = append(up.Missed, id)
		}
	}

	return up
}

// smooth applies EMA to the track's box. Confidence is not smoothed.
func (t *Tracker) smooth(tr *Track, d detect.Detection) {
	a := t.cfg.Smoothing
	tr.Box.X = a*d.X + (1-a)*tr.Box.X
	tr.Box.Y = a*d.Y + (1-a)*tr.Box.Y
	tr.Box.W = a*d.W + (1-a)*tr.Box.W
	tr.Box.H = a*d.H + (1-a)*tr.Box.H
	tr.Box.Confidence = d.Confidence
	tr.Box.Coarse = d.Coarse
}

// Len returns the number of live identities.
func (t *Tracker) Len() int {
	return len(t.tracks)
}

// Lookup returns a live track by ID.
func (t *Tracker) Lookup(id string) (*Track, bool) {
	tr, ok := t.tracks[id]
	return tr, ok
}

// Reset forgets all identities.
func (t *Tracker) Reset() {
	t.tracks = make(map[string]*Track)
}
