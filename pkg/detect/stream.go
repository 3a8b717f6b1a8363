package detect

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vigilabs/go-vigil/internal/httpc"
	"github.com/vigilabs/go-vigil/internal/log"
	"github.com/vigilabs/go-vigil/pkg/landmarks"
)

// Frame is one observation pushed by an external landmark stream:
// a face identity plus its 68 points for one video frame. Empty
// Points means the face was not found in this frame.
type Frame struct {
	FaceID string              `json:"face_id"`
	Points []landmarks.Point2D `json:"points"`
}

// Stream consumes landmark frames pushed by a remote detector over a
// websocket. Deployments that already run a full face+landmark stack
// feed vigil this way instead of through the camera pipeline.
type Stream struct {
	url string

	ws     *websocket.Conn
	frames chan Frame

	mu     sync.Mutex
	closed bool
}

// NewStream creates a client for the given ws:// or wss:// URL.
func NewStream(rawURL string) *Stream {
	return &Stream{
		url:    rawURL,
		frames: make(chan Frame, 64),
	}
}

// Connect probes the service health endpoint, then dials the stream.
func (s *Stream) Connect() error {
	if err := s.probeHealth(); err != nil {
		return err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.Dial(s.url, nil)
	if err != nil {
		return fmt.Errorf("landmark stream connect failed: %w", err)
	}
	s.ws = ws

	go s.readLoop()
	return nil
}

// probeHealth hits the service's HTTP healthz before committing to the
// websocket handshake, so a down service fails fast with a clear error.
func (s *Stream) probeHealth() error {
	u, err := url.Parse(s.url)
	if err != nil {
		return fmt.Errorf("invalid landmark stream URL: %w", err)
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	healthURL := fmt.Sprintf("%s://%s/healthz", scheme, u.Host)

	resp, err := httpc.Get(healthURL)
	if err != nil {
		return fmt.Errorf("landmark service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("landmark service unhealthy: %s", resp.Status)
	}
	return nil
}

// Frames returns the channel of incoming landmark frames. The channel
// closes when the stream ends.
func (s *Stream) Frames() <-chan Frame {
	return s.frames
}

func (s *Stream) readLoop() {
	defer close(s.frames)

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed && !strings.Contains(err.Error(), "use of closed") {
				log.Warn("landmark stream ended", "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Warn("bad landmark frame, skipping", "error", err)
			continue
		}

		select {
		case s.frames <- frame:
		default:
			// Consumer fell behind a full buffer; drop the oldest
			// frame. Stale landmarks are worthless.
			select {
			case <-s.frames:
			default:
			}
			s.frames <- frame
		}
	}
}

// Close shuts the stream down.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.ws != nil {
		return s.ws.Close()
	}
	return nil
}
