package drowsy

import "sort"

// Pool is an arena of per-face evaluators keyed by the stable tracking
// ID the face tracker assigns. Slots are index-addressable and reused
// through a free list, so long sessions with faces entering and
// leaving do not grow the arena unboundedly.
//
// The pool exposes no cross-face aggregation: each face alerts
// independently.
type Pool struct {
	cfg   Config
	slots []*Evaluator
	free  []int
	byID  map[string]int
}

// NewPool validates cfg once for all future evaluators.
func NewPool(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool{cfg: cfg, byID: make(map[string]int)}, nil
}

// Get returns the evaluator for a face ID, allocating a slot on first
// sight. Allocation cannot fail: the config was validated at pool
// construction.
func (p *Pool) Get(id string) *Evaluator {
	if idx, ok := p.byID[id]; ok {
		return p.slots[idx]
	}

	eval, _ := NewEvaluator(p.cfg)

	var idx int
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[idx] = eval
	} else {
		idx = len(p.slots)
		p.slots = append(p.slots, eval)
	}
	p.byID[id] = idx
	return eval
}

// Lookup returns the evaluator for a face ID without allocating.
func (p *Pool) Lookup(id string) (*Evaluator, bool) {
	idx, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return p.slots[idx], true
}

// Release discards a face's evaluator when the tracker forgets it.
// Its slot index returns to the free list.
func (p *Pool) Release(id string) {
	idx, ok := p.byID[id]
	if !ok {
		return
	}
	delete(p.byID, id)
	p.slots[idx] = nil
	p.free = append(p.free, idx)
}

// Len returns the number of live evaluators.
func (p *Pool) Len() int {
	return len(p.byID)
}

// IDs returns the live face IDs in stable order.
func (p *Pool) IDs() []string {
	ids := make([]string, 0, len(p.byID))
	for id := range p.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetConfig applies new thresholds to every live evaluator and to
// future allocations. Rejected configs change nothing.
func (p *Pool) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg = cfg
	for _, eval := range p.slots {
		if eval != nil {
			// Already validated above.
			_ = eval.Machine().SetConfig(cfg)
		}
	}
	return nil
}

// Config returns the pool's current configuration.
func (p *Pool) Config() Config {
	return p.cfg
}
