package detect

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vigilabs/go-vigil/pkg/landmarks"
)

// SocketLandmarker talks to a local landmark regression service over a
// Unix socket with msgpack framing. The service (typically a Python
// process wrapping the shape-predictor model) receives the JPEG frame
// plus a normalized face box and returns the 68 regressed points.
type SocketLandmarker struct {
	socketPath string
	timeout    time.Duration
}

// landmarkRequest is sent to the regression service.
type landmarkRequest struct {
	Image []byte  `msgpack:"img"` // JPEG frame
	X     float64 `msgpack:"x"`   // face box, 0-1 normalized
	Y     float64 `msgpack:"y"`
	W     float64 `msgpack:"w"`
	H     float64 `msgpack:"h"`
}

// landmarkResponse is received from the regression service.
type landmarkResponse struct {
	Points      []float64 `msgpack:"pts"` // 136 values: x0,y0,x1,y1,...
	InferenceMs float32   `msgpack:"inference_ms"`
}

// NewSocketLandmarker creates a client for the Unix-socket service.
func NewSocketLandmarker(socketPath string) *SocketLandmarker {
	return &SocketLandmarker{
		socketPath: socketPath,
		timeout:    150 * time.Millisecond, // a frame budget, not a network budget
	}
}

// Landmarks regresses the 68-point set for one face box.
func (c *SocketLandmarker) Landmarks(jpeg []byte, face Detection) (landmarks.Set, error) {
	var s landmarks.Set

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return s, fmt.Errorf("connect landmark service: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	req := landmarkRequest{Image: jpeg, X: face.X, Y: face.Y, W: face.W, H: face.H}
	reqData, err := msgpack.Marshal(req)
	if err != nil {
		return s, fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(reqData); err != nil {
		return s, fmt.Errorf("send request: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}

	respData, err := io.ReadAll(conn)
	if err != nil {
		return s, fmt.Errorf("read response: %w", err)
	}

	var resp landmarkResponse
	if err := msgpack.Unmarshal(respData, &resp); err != nil {
		return s, fmt.Errorf("decode response: %w", err)
	}

	return pairPoints(resp.Points)
}

// Close is a no-op; the client dials per call.
func (c *SocketLandmarker) Close() error {
	return nil
}

// pairPoints converts a flat x,y value array into a validated Set.
func pairPoints(vals []float64) (landmarks.Set, error) {
	var s landmarks.Set
	if len(vals) != 2*landmarks.NumLandmarks {
		return s, fmt.Errorf("%w: got %d values, want %d",
			landmarks.ErrCount, len(vals), 2*landmarks.NumLandmarks)
	}
	pts := make([]landmarks.Point2D, landmarks.NumLandmarks)
	for i := range pts {
		pts[i] = landmarks.Point2D{X: vals[i*2], Y: vals[i*2+1]}
	}
	return landmarks.FromSlice(pts)
}
