package tracking

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Static is the no-op provider: a fixed head position for installations
// without a tracking system, or as the fallback when acquisition fails.
type Static struct {
	state
	pos mgl64.Vec3
}

// NewStatic creates a static provider reporting the given rig-local head
// position.
func NewStatic(pos mgl64.Vec3) *Static {
	s := &Static{state: newState(), pos: pos}
	s.last = pos
	return s
}

// NewStaticHeight creates a static provider for a head centered on the rig
// at the given height.
func NewStaticHeight(height float64) *Static {
	return NewStatic(mgl64.Vec3{0, height, 0})
}

// Start always succeeds; a fixed position is always available. The position
// is announced once here, since it never changes afterwards.
func (s *Static) Start() bool {
	s.setTracking(true)
	s.update(s.pos)
	return true
}

// Stop marks the provider as no longer tracking.
func (s *Static) Stop() {
	s.setTracking(false)
}

// Poll returns the configured position.
func (s *Static) Poll() mgl64.Vec3 {
	return s.pos
}

// Status describes the provider for diagnostics.
func (s *Static) Status() string {
	return fmt.Sprintf("static head at (%.2f, %.2f, %.2f)", s.pos.X(), s.pos.Y(), s.pos.Z())
}
