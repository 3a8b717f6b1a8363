// Package detect is go-vigil's face acquisition boundary: face
// detection backends plus clients for external 68-point landmark
// regression services. Detection and regression themselves are
// black boxes; this package only binds them.
package detect

import "github.com/vigilabs/go-vigil/pkg/landmarks"

// Detection represents a detected face.
type Detection struct {
	X, Y       float64 // Top-left corner (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)

	// Coarse is the detector's own 5-point landmark estimate
	// (eyes, nose tip, mouth corners). Identity tracking only;
	// the ratio pipeline uses the full 68-point set.
	Coarse [5]landmarks.Point2D
}

// Center returns the center point of the detection.
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box.
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Detector is the interface for face detection backends.
type Detector interface {
	// Detect finds faces in the image and returns their positions.
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources.
	Close() error
}

// Landmarker is the interface to the external 68-point landmark
// regression service. One call per face per frame.
type Landmarker interface {
	// Landmarks regresses the 68-point set for a face box in the frame.
	Landmarks(jpeg []byte, face Detection) (landmarks.Set, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// SelectBest picks the most prominent face from multiple detections.
// Confidence dominates the score at 70% with relative area at 30%, so
// the driver wins over a passenger further from the cabin camera.
// Single-face deployments evaluate only this face.
func SelectBest(dets []Detection) *Detection {
	switch len(dets) {
	case 0:
		return nil
	case 1:
		return &dets[0]
	}

	largest := 0.0
	for _, d := range dets {
		if a := d.Area(); a > largest {
			largest = a
		}
	}

	best, bestScore := -1, 0.0
	for i, d := range dets {
		s := 0.7*d.Confidence + 0.3*d.Area()/largest
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return &dets[best]
}
