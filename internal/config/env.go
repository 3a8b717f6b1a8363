// Package config provides configuration helpers for go-vigil commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for the monitor pipeline.
const (
	DefaultCameraDevice   = 0
	DefaultDashboardPort  = "8090"
	DefaultModelPath      = "models/face_detection_yunet.onnx"
	DefaultLandmarkSocket = "/tmp/vigil-landmarks.sock"
)

// CameraDevice returns the capture device index from VIGIL_CAMERA.
// Falls back to device 0 if not set.
func CameraDevice() int {
	if v := os.Getenv("VIGIL_CAMERA"); v != "" {
		if idx, err := strconv.Atoi(v); err == nil && idx >= 0 {
			return idx
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid VIGIL_CAMERA=%q, using device %d\n", v, DefaultCameraDevice)
	}
	return DefaultCameraDevice
}

// DashboardPort returns the dashboard port from VIGIL_PORT or the default.
func DashboardPort() string {
	if port := os.Getenv("VIGIL_PORT"); port != "" {
		return port
	}
	return DefaultDashboardPort
}

// ModelPath returns the face detection model path from VIGIL_MODEL or the default.
func ModelPath() string {
	if path := os.Getenv("VIGIL_MODEL"); path != "" {
		return path
	}
	return DefaultModelPath
}

// ModelPathRequired returns the face detection model path from VIGIL_MODEL.
// Exits if the file does not exist.
func ModelPathRequired() string {
	path := ModelPath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: face detection model not found at %s\n", path)
		fmt.Fprintln(os.Stderr, "Set VIGIL_MODEL to the YuNet ONNX model path")
		os.Exit(1)
	}
	return path
}

// LandmarkSocket returns the landmark service socket path from
// VIGIL_LANDMARK_SOCKET or the default.
func LandmarkSocket() string {
	if path := os.Getenv("VIGIL_LANDMARK_SOCKET"); path != "" {
		return path
	}
	return DefaultLandmarkSocket
}

// LandmarkStreamURL returns the landmark stream websocket URL from
// VIGIL_LANDMARK_URL. Empty means the socket client is used instead.
func LandmarkStreamURL() string {
	return os.Getenv("VIGIL_LANDMARK_URL")
}

// FloatEnv reads a float64 from the environment, falling back to def
// when unset or unparsable.
func FloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid %s=%q, using %v\n", key, v, def)
	}
	return def
}

// IntEnv reads an int from the environment, falling back to def
// when unset or unparsable.
func IntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid %s=%q, using %v\n", key, v, def)
	}
	return def
}
