// Package landmarks defines the 68-point facial landmark model used
// throughout go-vigil.
//
// Indices follow the iBUG 300-W annotation scheme: [36,42) left eye,
// [42,48) right eye, [48,68) outer+inner mouth contour.
package landmarks

import (
	"errors"
	"fmt"
	"math"
)

// Landmark index ranges for the 68-point annotation.
const (
	LeftEyeStart  = 36
	LeftEyeEnd    = 42
	RightEyeStart = 42
	RightEyeEnd   = 48
	MouthStart    = 48
	MouthEnd      = 68
	NumLandmarks  = 68

	EyePoints   = LeftEyeEnd - LeftEyeStart // 6 per eye
	MouthPoints = MouthEnd - MouthStart     // 20
)

// ErrCount reports a landmark set or subrange with the wrong number of
// points. Frames carrying it are skipped as "no usable signal".
var ErrCount = errors.New("invalid landmark count")

// Point2D is a single detected anatomical point, immutable once
// produced by the upstream detector.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Set is an ordered, index-addressable set of exactly 68 points.
// The fixed length is the invariant: a Set that exists is well-formed.
type Set [NumLandmarks]Point2D

// FromSlice validates and converts a detector output slice into a Set.
func FromSlice(pts []Point2D) (Set, error) {
	var s Set
	if len(pts) != NumLandmarks {
		return s, fmt.Errorf("%w: got %d points, want %d", ErrCount, len(pts), NumLandmarks)
	}
	copy(s[:], pts)
	return s, nil
}

// LeftEye returns the 6 left-eye contour points.
// Order: 0=outer corner, 3=inner corner, 1/5 and 2/4 upper/lower lid pairs.
func (s *Set) LeftEye() [EyePoints]Point2D {
	var eye [EyePoints]Point2D
	copy(eye[:], s[LeftEyeStart:LeftEyeEnd])
	return eye
}

// RightEye returns the 6 right-eye contour points, same ordering as LeftEye.
func (s *Set) RightEye() [EyePoints]Point2D {
	var eye [EyePoints]Point2D
	copy(eye[:], s[RightEyeStart:RightEyeEnd])
	return eye
}

// Mouth returns the 20 mouth contour points.
// Order: 0=left corner, 6=right corner, 2/10 upper/lower lip midpoints.
func (s *Set) Mouth() [MouthPoints]Point2D {
	var mouth [MouthPoints]Point2D
	copy(mouth[:], s[MouthStart:MouthEnd])
	return mouth
}
