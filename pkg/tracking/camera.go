package tracking

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-cave/internal/log"
	"github.com/teslashibe/go-cave/pkg/tracking/detection"
)

// FrameSource supplies JPEG frames from whatever owns the camera. Returning
// an error is treated as a missed frame, not a failure.
type FrameSource func() ([]byte, error)

// CameraConfig configures the vision-based head tracking provider.
type CameraConfig struct {
	// FOV is the camera's horizontal field of view in radians.
	FOV float64 `yaml:"fov"`

	// Distance is the assumed viewer distance from the camera in meters.
	// The camera sits at the wall looking back at the viewer; a single
	// camera cannot measure depth, so lateral position is derived from this
	// assumption.
	Distance float64 `yaml:"distance"`

	// Height is the camera mount height in meters.
	Height float64 `yaml:"height"`

	// MinConfidence rejects weaker detections.
	MinConfidence float64 `yaml:"min_confidence"`

	// MissLimit is the number of consecutive frames without a face before
	// tracking flips to lost.
	MissLimit int `yaml:"miss_limit"`
}

// DefaultCameraConfig returns the recommended camera provider settings.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FOV:           math.Pi / 2, // 90 degrees horizontal
		Distance:      2.0,
		Height:        1.6,
		MinConfidence: 0.6,
		MissLimit:     30, // half a second at 60Hz
	}
}

// Validate checks the configuration.
func (c CameraConfig) Validate() error {
	if c.FOV <= 0 || c.FOV >= math.Pi {
		return fmt.Errorf("fov must be in (0, pi), got %v", c.FOV)
	}
	if c.Distance <= 0 {
		return fmt.Errorf("distance must be positive, got %v", c.Distance)
	}
	if c.MissLimit <= 0 {
		return fmt.Errorf("miss_limit must be positive, got %v", c.MissLimit)
	}
	return nil
}

// CameraProvider estimates the head position from face detection on frames
// pulled from an injected source. Face centers in the frame map to rig-local
// lateral and vertical offsets through the camera FOV and the assumed
// viewer distance.
type CameraProvider struct {
	state
	cfg    CameraConfig
	source FrameSource
	det    detection.Detector
	misses int

	logger *slog.Logger
}

// NewCameraProvider creates a vision-based provider. The detector is owned
// by the provider and closed on Stop.
func NewCameraProvider(cfg CameraConfig, source FrameSource, det detection.Detector) *CameraProvider {
	return &CameraProvider{
		state:  newState(),
		cfg:    cfg,
		source: source,
		det:    det,
		logger: log.Component("tracking.camera"),
	}
}

// Start reports whether the provider has both a frame source and a
// detector.
func (p *CameraProvider) Start() bool {
	if p.source == nil || p.det == nil {
		p.logger.Warn("camera tracking unavailable, falling back to static head")
		return false
	}
	return true
}

// Stop releases the detector. Idempotent.
func (p *CameraProvider) Stop() {
	if p.det != nil {
		_ = p.det.Close()
		p.det = nil
	}
	p.setTracking(false)
}

// Poll grabs one frame, detects the dominant face and converts it to a
// head position. Missed frames count toward the loss limit; the last known
// good position keeps being returned.
func (p *CameraProvider) Poll() mgl64.Vec3 {
	if p.det == nil {
		return p.last
	}

	frame, err := p.source()
	if err != nil {
		p.miss()
		return p.last
	}
	dets, err := p.det.Detect(frame)
	if err != nil {
		p.miss()
		return p.last
	}
	best := detection.SelectBest(dets)
	if best == nil || best.Confidence < p.cfg.MinConfidence {
		p.miss()
		return p.last
	}

	p.misses = 0
	p.setTracking(true)
	p.update(p.project(*best))
	return p.last
}

// Status describes the detection state for diagnostics.
func (p *CameraProvider) Status() string {
	if p.det == nil {
		return "camera tracking stopped"
	}
	if p.tracking {
		return "camera tracking face"
	}
	return fmt.Sprintf("camera searching for face (%d misses)", p.misses)
}

func (p *CameraProvider) miss() {
	p.misses++
	if p.misses >= p.cfg.MissLimit {
		p.setTracking(false)
	}
}

// project maps a normalized face center to a rig-local head position. The
// camera looks back at the viewer, so frame X is mirrored.
func (p *CameraProvider) project(d detection.Detection) mgl64.Vec3 {
	cx, cy := d.Center()
	halfWidth := p.cfg.Distance * math.Tan(p.cfg.FOV/2)
	x := (0.5 - cx) * 2 * halfWidth
	// Vertical FOV assumes the common 4:3 sensor aspect.
	halfHeight := halfWidth * 3 / 4
	y := p.cfg.Height + (0.5-cy)*2*halfHeight
	return mgl64.Vec3{x, y, 0}
}
