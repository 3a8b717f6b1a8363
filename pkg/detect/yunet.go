package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/vigilabs/go-vigil/pkg/landmarks"
)

// yunetCols is the width of YuNet's output matrix: box (4), five
// coarse landmark x,y pairs (10), score (1).
const yunetCols = 15

// YuNetDetector runs OpenCV's FaceDetectorYN on CPU.
type YuNetDetector struct {
	cfg Config

	mu  sync.Mutex // one inference at a time
	net gocv.FaceDetectorYN
}

// NewYuNet loads the ONNX model at cfg.ModelPath.
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("yunet model: %w", err)
	}

	net := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // ONNX needs no separate config file
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // top K before NMS
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{cfg: cfg, net: net}, nil
}

// Detect decodes the JPEG and returns every face above the confidence
// threshold, with boxes and coarse landmarks normalized to 0-1.
func (d *YuNetDetector) Detect(jpeg []byte) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("decode frame: empty image")
	}

	// The model's input size must match the frame it scans.
	d.net.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	out := gocv.NewMat()
	defer out.Close()
	d.net.Detect(img, &out)

	w, h := float64(img.Cols()), float64(img.Rows())
	dets := make([]Detection, 0, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		dets = append(dets, parseYuNetRow(&out, r, w, h))
	}
	return dets, nil
}

// parseYuNetRow converts one pixel-space output row to a normalized
// Detection. Columns 0-3 are the box, 4-13 the five coarse landmarks,
// 14 the score.
func parseYuNetRow(out *gocv.Mat, r int, w, h float64) Detection {
	at := func(c int) float64 { return float64(out.GetFloatAt(r, c)) }

	det := Detection{
		X:          at(0) / w,
		Y:          at(1) / h,
		W:          at(2) / w,
		H:          at(3) / h,
		Confidence: at(yunetCols - 1),
	}
	for i := range det.Coarse {
		det.Coarse[i] = landmarks.Point2D{
			X: at(4+2*i) / w,
			Y: at(5+2*i) / h,
		}
	}
	return det
}

// Close releases the model.
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.net.Close()
	return nil
}
