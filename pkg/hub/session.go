package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeTimeout = 5 * time.Second
	pingEvery    = 30 * time.Second

	// readTimeout must outlast pingEvery so a live peer's pongs keep
	// the deadline fresh.
	readTimeout = 75 * time.Second

	// Inbound frames are control traffic only; camera frames flow the
	// other way.
	readLimit = 4 * 1024
)

// session is one subscriber connection. The writer goroutine is the
// only writer on the conn.
type session struct {
	conn *websocket.Conn
	out  chan Message
}

// Serve registers the connection with the hub and blocks until it
// closes. Call it from the websocket handler.
func (h *Hub) Serve(conn *websocket.Conn) {
	s := &session{
		conn: conn,
		out:  make(chan Message, 128),
	}
	h.join <- s

	go s.writer()

	// Read loop: subscribers never send application data, but reading
	// is how pongs are processed and disconnects are noticed.
	defer func() {
		h.leave <- s
		conn.Close()
	}()
	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *session) writer() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			kind := websocket.TextMessage
			if msg.Binary {
				kind = websocket.BinaryMessage
			}
			if err := s.conn.WriteMessage(kind, msg.Data); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
