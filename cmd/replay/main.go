// Replay - score a recorded landmark session offline
//
// Reads a JSONL file of landmark frames (one frame per line, the same
// shape the websocket stream pushes) and runs it through the alert
// core, printing every alert transition and a final summary.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/vigilabs/go-vigil/pkg/detect"
	"github.com/vigilabs/go-vigil/pkg/drowsy"
	"github.com/vigilabs/go-vigil/pkg/monitor"
)

func main() {
	cfg := monitor.DefaultConfig()

	eye := flag.Float64("eye", cfg.Drowsy.EyeThreshold, "Eye aspect ratio threshold")
	mouth := flag.Float64("mouth", cfg.Drowsy.MouthThreshold, "Mouth aspect ratio threshold")
	frames := flag.Int("frames", cfg.Drowsy.FrameThreshold, "Consecutive drowsy frames before alerting")
	window := flag.Duration("window", 0, "Drowsy persistence window; overrides -frames using -fps")
	fps := flag.Float64("fps", 30, "Recording frame rate, used with -window")
	hold := flag.Bool("hold", false, "Hold the drowsy counter across frames with no face")
	verbose := flag.Bool("v", false, "Print every frame, not just transitions")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] recording.jsonl\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg.Drowsy.EyeThreshold = *eye
	cfg.Drowsy.MouthThreshold = *mouth
	cfg.Drowsy.FrameThreshold = *frames
	if *window > 0 {
		cfg.Drowsy.FrameThreshold = drowsy.FramesFor(*window, *fps)
	}
	if *hold {
		cfg.Drowsy.OnNoFace = drowsy.PolicyHold
	}

	runner, err := monitor.NewStreamRunner(cfg)
	if err != nil {
		stdlog.Fatalf("❌ Configuration: %v", err)
	}

	alerts := 0
	runner.OnAlert(func(faceID string, alerting bool) {
		if alerting {
			alerts++
		}
	})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		stdlog.Fatalf("❌ %v", err)
	}
	defer f.Close()

	fmt.Printf("🔁 Replaying %s (eye<%.2f mouth>%.2f frames=%d)\n\n",
		flag.Arg(0), cfg.Drowsy.EyeThreshold, cfg.Drowsy.MouthThreshold, cfg.Drowsy.FrameThreshold)

	lineNum := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame detect.Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			stdlog.Fatalf("❌ Line %d: %v", lineNum, err)
		}
		if frame.FaceID == "" {
			frame.FaceID = "face-0"
		}

		status := runner.Consume(frame)
		rep := status.Report
		switch {
		case rep.Changed && rep.State == drowsy.StateAlerting:
			fmt.Printf("🚨 frame %-6d %s ALERT  (ear=%.3f mar=%.3f after %d frames)\n",
				lineNum, frame.FaceID, rep.EAR, rep.MAR, rep.Count)
		case rep.Changed:
			fmt.Printf("✅ frame %-6d %s clear\n", lineNum, frame.FaceID)
		case *verbose:
			fmt.Printf("   frame %-6d %s %-8s ear=%.3f mar=%.3f count=%d\n",
				lineNum, frame.FaceID, rep.State, rep.EAR, rep.MAR, rep.Count)
		}
	}
	if err := scanner.Err(); err != nil {
		stdlog.Fatalf("❌ %v", err)
	}

	dur := time.Duration(float64(lineNum) / *fps * float64(time.Second))
	fmt.Printf("\nDone: %d frames (%s at %.0f fps), %d alert(s)\n", lineNum, dur.Round(time.Second), *fps, alerts)
}
