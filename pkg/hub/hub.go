// Package hub fans dashboard traffic out to websocket subscribers.
// go-vigil runs one hub per stream: status snapshots, alert edges,
// log lines and JPEG camera frames.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/vigilabs/go-vigil/internal/log"
)

// Message is one payload to fan out. JSON payloads go out as text
// frames, everything else as binary.
type Message struct {
	Data   []byte
	Binary bool
}

// Hub owns the subscriber set. All membership changes go through the
// Run loop; only ClientCount peeks from outside, under the mutex.
type Hub struct {
	name string

	feed  chan Message
	join  chan *session
	leave chan *session

	mu      sync.RWMutex
	subs    map[*session]struct{}
	running bool
}

// New creates a hub. Call Run in a goroutine before serving clients.
func New(name string) *Hub {
	return &Hub{
		name:  name,
		feed:  make(chan Message, 128),
		join:  make(chan *session),
		leave: make(chan *session),
		subs:  make(map[*session]struct{}),
	}
}

// Run dispatches joins, leaves and broadcasts until the process exits.
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	for {
		select {
		case s := <-h.join:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			n := len(h.subs)
			h.mu.Unlock()
			log.Debug("subscriber joined", "hub", h.name, "total", n)

		case s := <-h.leave:
			h.drop(s)

		case msg := <-h.feed:
			h.mu.RLock()
			stale := []*session(nil)
			for s := range h.subs {
				select {
				case s.out <- msg:
				default:
					// Subscriber's buffer is full; it is not
					// keeping up and gets disconnected.
					stale = append(stale, s)
				}
			}
			h.mu.RUnlock()
			for _, s := range stale {
				h.drop(s)
				log.Warn("dropped slow subscriber", "hub", h.name)
			}
		}
	}
}

func (h *Hub) drop(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.out)
		log.Debug("subscriber left", "hub", h.name, "remaining", len(h.subs))
	}
}

// Broadcast queues a message for every subscriber. When the feed is
// saturated the message is dropped; stale dashboard frames are
// worthless by the time a slot frees up.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.feed <- msg:
	default:
		log.Warn("feed saturated, message dropped", "hub", h.name)
	}
}

// BroadcastJSON marshals v and broadcasts it as a text frame.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Data: data})
	return nil
}

// BroadcastBinary broadcasts raw bytes, e.g. a JPEG frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Message{Data: data, Binary: true})
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// IsRunning reports whether the dispatch loop has started.
func (h *Hub) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}
