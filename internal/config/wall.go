// Package config provides configuration helpers for go-cave commands.
package config

import (
	"fmt"
	"os"
)

// Default endpoints for the demo binaries.
const (
	DefaultDashboardPort = "8090"
	DefaultTrackerPort   = "3883" // VRPN's registered port
)

// DashboardPort returns the dashboard port from CAVE_DASHBOARD_PORT.
// Falls back to the default if not set.
func DashboardPort() string {
	if p := os.Getenv("CAVE_DASHBOARD_PORT"); p != "" {
		return p
	}
	return DefaultDashboardPort
}

// TrackerAddr returns the UDP tracker listen address from CAVE_TRACKER_ADDR.
// Falls back to the provided default if not set.
func TrackerAddr(def string) string {
	if a := os.Getenv("CAVE_TRACKER_ADDR"); a != "" {
		return a
	}
	return def
}

// FaceModelPath returns the face detection model path from CAVE_FACE_MODEL.
// Prints usage and exits if not set, since the camera provider cannot run
// without a model.
func FaceModelPath() string {
	p := os.Getenv("CAVE_FACE_MODEL")
	if p == "" {
		fmt.Fprintln(os.Stderr, "Error: CAVE_FACE_MODEL environment variable is required for the camera provider")
		fmt.Fprintln(os.Stderr, "Usage: CAVE_FACE_MODEL=face_detection_yunet.onnx cavewall -provider camera")
		os.Exit(1)
	}
	return p
}
