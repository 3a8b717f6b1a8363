// Package ratio computes the geometric aspect ratios go-vigil scores
// drowsiness with: eye aspect ratio (EAR) and mouth aspect ratio (MAR).
//
// Both are pure per-frame functions of landmark geometry. Low EAR means
// closed or closing eyes; high MAR means an open mouth (yawning).
package ratio

import (
	"errors"
	"fmt"

	"github.com/vigilabs/go-vigil/pkg/landmarks"
)

// ErrDegenerate reports a zero-length reference distance. Callers must
// treat the frame as carrying no usable signal rather than propagate
// NaN or Inf into thresholds.
var ErrDegenerate = errors.New("degenerate geometry")

// EyeAspectRatio computes the EAR of a 6-point eye contour:
//
//	(dist(p1,p5) + dist(p2,p4)) / (2 * dist(p0,p3))
//
// where p0/p3 are the outer/inner corners and p1/p5, p2/p4 the
// upper/lower lid pairs.
func EyeAspectRatio(eye [landmarks.EyePoints]landmarks.Point2D) (float64, error) {
	width := landmarks.Distance(eye[0], eye[3])
	if width == 0 {
		return 0, fmt.Errorf("%w: eye corners coincide", ErrDegenerate)
	}
	vertical := landmarks.Distance(eye[1], eye[5]) + landmarks.Distance(eye[2], eye[4])
	return vertical / (2 * width), nil
}

// MouthAspectRatio computes the MAR of a 20-point mouth contour:
//
//	dist(p2,p10) / dist(p0,p6)
//
// where p0/p6 are the left/right corners and p2/p10 the upper/lower
// lip midpoints.
func MouthAspectRatio(mouth [landmarks.MouthPoints]landmarks.Point2D) (float64, error) {
	width := landmarks.Distance(mouth[0], mouth[6])
	if width == 0 {
		return 0, fmt.Errorf("%w: mouth corners coincide", ErrDegenerate)
	}
	return landmarks.Distance(mouth[2], mouth[10]) / width, nil
}

// CombinedEAR computes the mean EAR of both eyes from a full landmark
// set. A degenerate contour in either eye fails the whole frame; a
// caller wanting one-eye fallback can score each eye directly.
func CombinedEAR(s *landmarks.Set) (float64, error) {
	left, err := EyeAspectRatio(s.LeftEye())
	if err != nil {
		return 0, fmt.Errorf("left eye: %w", err)
	}
	right, err := EyeAspectRatio(s.RightEye())
	if err != nil {
		return 0, fmt.Errorf("right eye: %w", err)
	}
	return (left + right) / 2, nil
}
