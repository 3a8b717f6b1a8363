package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Source captures JPEG frames from a local video device. It implements
// the monitor pipeline's VideoSource.
type Source struct {
	cap *gocv.VideoCapture
	cfg Config

	mu  sync.Mutex
	mat gocv.Mat
}

// Open opens the capture device described by cfg.
func Open(cfg Config) (*Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open capture device %d: %w", cfg.Device, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Source{
		cap: cap,
		cfg: cfg,
		mat: gocv.NewMat(),
	}, nil
}

// CaptureJPEG grabs one frame and encodes it as JPEG.
func (s *Source) CaptureJPEG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cap.Read(&s.mat) {
		return nil, fmt.Errorf("capture device %d: read failed", s.cfg.Device)
	}
	if s.mat.Empty() {
		return nil, fmt.Errorf("capture device %d: empty frame", s.cfg.Device)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, s.mat,
		[]int{gocv.IMWriteJpegQuality, s.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out: the native buffer is reused.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Apply reconfigures the open device in place. Resolution changes take
// effect on the next frame.
func (s *Source) Apply(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid camera config: %v", errs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Device != s.cfg.Device {
		return fmt.Errorf("cannot switch device on an open source")
	}

	s.cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	s.cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	s.cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	s.cfg = cfg
	return nil
}

// Close releases the device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mat.Close()
	return s.cap.Close()
}
