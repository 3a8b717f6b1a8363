// Vigil - real-time drowsiness monitor
//
// Captures camera frames, detects faces, scores eye/mouth aspect
// ratios and raises alerts when a face stays drowsy long enough.
// Serves a live dashboard over HTTP and websockets.
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vigilabs/go-vigil/internal/config"
	"github.com/vigilabs/go-vigil/internal/log"
	"github.com/vigilabs/go-vigil/pkg/camera"
	"github.com/vigilabs/go-vigil/pkg/detect"
	"github.com/vigilabs/go-vigil/pkg/drowsy"
	"github.com/vigilabs/go-vigil/pkg/monitor"
	"github.com/vigilabs/go-vigil/pkg/web"
)

type options struct {
	port      string
	streamURL string
	socket    string
	model     string
	device    int
	preset    string
	interval  time.Duration
}

func main() {
	opts, cfg := parseFlags()

	log.Init(os.Getenv("VIGIL_LOG_LEVEL"))
	fmt.Println("👁️  Vigil Drowsiness Monitor")
	fmt.Println("============================")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.streamURL != "" {
		runStream(ctx, opts, cfg)
		return
	}
	runCamera(ctx, opts, cfg)
}

// runCamera is the full local pipeline: camera, YuNet detector,
// landmark sidecar, scoring, dashboard.
func runCamera(ctx context.Context, opts options, cfg monitor.Config) {
	camCfg := camera.DefaultConfig()
	camCfg.Device = opts.device

	src, err := camera.Open(camCfg)
	if err != nil {
		stdlog.Fatalf("❌ Camera %d: %v", opts.device, err)
	}
	defer src.Close()

	detCfg := detect.DefaultConfig()
	detCfg.ModelPath = opts.model
	detector, err := detect.NewYuNet(detCfg)
	if err != nil {
		stdlog.Fatalf("❌ Face detector: %v", err)
	}
	defer detector.Close()

	landmarker := detect.NewSocketLandmarker(opts.socket)
	defer landmarker.Close()

	server := web.NewServer(opts.port, nil)

	// Tee captured frames to the dashboard's camera stream.
	video := &teeSource{src: src, server: server}

	mon, err := monitor.New(cfg, video, detector, landmarker)
	if err != nil {
		stdlog.Fatalf("❌ Configuration: %v", err)
	}
	mon.SetStateUpdater(server)
	mon.OnAlert(server.AlertChanged)
	server.SetMonitor(mon)

	camMgr := camera.NewManager()
	camMgr.OnConfigChange = src.Apply
	if err := camMgr.SetConfig(camCfg); err != nil {
		stdlog.Fatalf("❌ Camera config: %v", err)
	}
	server.SetCameraManager(camMgr)

	server.StartAsync()
	defer server.Shutdown()

	fmt.Printf("Camera:    device %d (%dx%d)\n", opts.device, camCfg.Width, camCfg.Height)
	fmt.Printf("Model:     %s\n", opts.model)
	fmt.Printf("Landmarks: %s\n", opts.socket)
	fmt.Printf("Dashboard: http://localhost:%s\n\n", opts.port)

	mon.Run(ctx)
	fmt.Println("\n👋 Goodbye!")
}

// runStream scores frames pushed by an external landmark detector
// instead of running the camera pipeline.
func runStream(ctx context.Context, opts options, cfg monitor.Config) {
	runner, err := monitor.NewStreamRunner(cfg)
	if err != nil {
		stdlog.Fatalf("❌ Configuration: %v", err)
	}

	server := web.NewServer(opts.port, nil)
	runner.SetStateUpdater(server)
	runner.OnAlert(server.AlertChanged)

	stream := detect.NewStream(opts.streamURL)
	if err := stream.Connect(); err != nil {
		stdlog.Fatalf("❌ Landmark stream: %v", err)
	}
	defer stream.Close()

	server.StartAsync()
	defer server.Shutdown()

	fmt.Printf("Stream:    %s\n", opts.streamURL)
	fmt.Printf("Dashboard: http://localhost:%s\n\n", opts.port)

	runner.Run(ctx, stream.Frames())
	fmt.Println("\n👋 Goodbye!")
}

// teeSource forwards every captured frame to the dashboard before
// handing it to the pipeline.
type teeSource struct {
	src    *camera.Source
	server *web.Server
}

func (t *teeSource) CaptureJPEG() ([]byte, error) {
	frame, err := t.src.CaptureJPEG()
	if err != nil {
		return nil, err
	}
	t.server.SendCameraFrame(frame)
	return frame, nil
}

// parseFlags builds the runtime options. Flags win over environment
// variables, which win over defaults.
func parseFlags() (options, monitor.Config) {
	cfg := monitor.DefaultConfig()

	opts := options{}
	flag.StringVar(&opts.port, "port", config.DashboardPort(), "Dashboard HTTP port")
	flag.StringVar(&opts.streamURL, "stream", config.LandmarkStreamURL(), "Landmark stream URL (ws://...); skips the camera pipeline")
	flag.StringVar(&opts.socket, "socket", config.LandmarkSocket(), "Landmark sidecar Unix socket")
	flag.StringVar(&opts.model, "model", config.ModelPath(), "YuNet face detection model (.onnx)")
	flag.IntVar(&opts.device, "camera", config.CameraDevice(), "Camera device index")
	flag.StringVar(&opts.preset, "preset", "", "Threshold preset: strict or relaxed")
	flag.DurationVar(&opts.interval, "interval", cfg.FrameInterval, "Frame capture interval")

	eye := flag.Float64("eye", 0, "Eye aspect ratio threshold (0 = preset default)")
	mouth := flag.Float64("mouth", 0, "Mouth aspect ratio threshold (0 = preset default)")
	frames := flag.Int("frames", 0, "Consecutive drowsy frames before alerting (0 = preset default)")
	window := flag.Duration("window", 0, "Drowsy persistence window; overrides -frames using the capture rate")
	hold := flag.Bool("hold", false, "Hold the drowsy counter across frames with no face")
	flag.Parse()

	switch opts.preset {
	case "strict":
		cfg.Drowsy = drowsy.StrictConfig()
	case "relaxed":
		cfg.Drowsy = drowsy.RelaxedConfig()
	case "":
	default:
		stdlog.Fatalf("❌ Unknown preset %q (want strict or relaxed)", opts.preset)
	}

	cfg.FrameInterval = opts.interval
	cfg.Drowsy.EyeThreshold = config.FloatEnv("VIGIL_EYE_THRESHOLD", cfg.Drowsy.EyeThreshold)
	cfg.Drowsy.MouthThreshold = config.FloatEnv("VIGIL_MOUTH_THRESHOLD", cfg.Drowsy.MouthThreshold)
	cfg.Drowsy.FrameThreshold = config.IntEnv("VIGIL_FRAME_THRESHOLD", cfg.Drowsy.FrameThreshold)

	if *eye > 0 {
		cfg.Drowsy.EyeThreshold = *eye
	}
	if *mouth > 0 {
		cfg.Drowsy.MouthThreshold = *mouth
	}
	if *frames > 0 {
		cfg.Drowsy.FrameThreshold = *frames
	}
	if *window > 0 {
		fps := float64(time.Second) / float64(cfg.FrameInterval)
		cfg.Drowsy.FrameThreshold = drowsy.FramesFor(*window, fps)
	}
	if *hold {
		cfg.Drowsy.OnNoFace = drowsy.PolicyHold
	}
	return opts, cfg
}
