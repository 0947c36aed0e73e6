// Package rig integrates head tracking with the wall geometry to produce
// per-eye off-axis frustums once per frame.
//
// The rig is the parent transform of the viewer: wall corners and head
// positions are rig-local, and the rig itself may translate and rotate
// (fly navigation). Each Tick runs the fixed frame order: provider poll,
// head resolution, eye-pair derivation, world-space corner transform,
// per-eye projection. The rig is single-threaded by design; drive it from
// one frame loop.
package rig

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-cave/internal/log"
	"github.com/teslashibe/go-cave/pkg/projection"
	"github.com/teslashibe/go-cave/pkg/tracking"
)

// Eye indexes the stereo pair.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

// State is a per-frame diagnostic snapshot for dashboards and logs.
type State struct {
	Frame      uint64
	Tracking   bool
	Status     string
	Head       mgl64.Vec3 // resolved head position, rig-local
	LeftValid  bool
	RightValid bool
}

// Rig owns the tracking provider, the wall geometry and the per-eye
// frustums. The provider is exclusively owned: replacing it stops the
// previous one.
type Rig struct {
	cfg Config

	position    mgl64.Vec3
	orientation mgl64.Quat

	provider   tracking.Provider
	providerOK bool
	acquired   bool // provider has produced at least one tracked sample

	head     mgl64.Vec3
	eyes     [2]mgl64.Vec3
	frustums [2]projection.Frustum
	valid    [2]bool
	frames   uint64

	logger *slog.Logger
}

// New creates a rig with the given configuration and an identity transform.
func New(cfg Config) *Rig {
	return &Rig{
		cfg:         cfg,
		orientation: mgl64.QuatIdent(),
		logger:      log.Component("rig"),
	}
}

// Config returns the active configuration.
func (r *Rig) Config() Config {
	return r.cfg
}

// SetProvider replaces the tracking provider wholesale. The previous
// provider is stopped. A failed Start is non-fatal: the rig stays on the
// static head position.
func (r *Rig) SetProvider(p tracking.Provider) {
	if r.provider != nil {
		r.provider.Stop()
	}
	r.provider = p
	r.providerOK = false
	r.acquired = false
	if p == nil {
		return
	}
	if !p.Start() {
		r.logger.Warn("tracking unavailable, using static head position", "status", p.Status())
		return
	}
	r.providerOK = true
}

// Provider returns the active tracking provider, or nil.
func (r *Rig) Provider() tracking.Provider {
	return r.provider
}

// SetTransform moves the rig in world space.
func (r *Rig) SetTransform(pos mgl64.Vec3, orient mgl64.Quat) {
	r.position = pos
	r.orientation = orient.Normalize()
}

// SetWall replaces the wall geometry, e.g. from a dashboard update.
func (r *Rig) SetWall(w projection.Wall) error {
	if err := w.Validate(); err != nil {
		return err
	}
	r.cfg.Wall = w
	return nil
}

// Tick advances one frame: poll tracking, resolve the head position,
// derive the eye pair and recompute both frustums. Degenerate eyes (at or
// behind the wall plane) keep their previous frustum untouched.
func (r *Rig) Tick() {
	r.frames++

	head := r.resolveHead()
	r.head = head

	// Eyes sit half the separation out along the rig's local right axis.
	rightAxis := r.orientation.Rotate(mgl64.Vec3{1, 0, 0})
	headWorld := r.toWorld(head)
	half := r.cfg.EyeSeparation / 2
	left := headWorld.Sub(rightAxis.Mul(half))
	right := headWorld.Add(rightAxis.Mul(half))
	if r.cfg.SwapEyes {
		left, right = right, left
	}
	r.eyes = [2]mgl64.Vec3{left, right}

	// Corners go through the rig transform every frame: the rig may have
	// moved and the projection needs world-space inputs.
	bl, brc, tl, _ := r.cfg.Wall.Corners()
	wbl, wbr, wtl := r.toWorld(bl), r.toWorld(brc), r.toWorld(tl)

	for i, eye := range r.eyes {
		f, err := projection.Compute(eye, wbl, wbr, wtl, r.cfg.Near, r.cfg.Far)
		if err != nil {
			// Previous frustum persists for this eye.
			continue
		}
		r.frustums[i] = f
		r.valid[i] = true
	}
}

// resolveHead picks the authoritative head-local position for this frame:
// the provider's sample while tracking, its last known good position after
// a loss, and the configured static height before any acquisition.
func (r *Rig) resolveHead() mgl64.Vec3 {
	if r.provider == nil || !r.providerOK {
		return mgl64.Vec3{0, r.cfg.HeadHeight, 0}
	}
	pos := r.provider.Poll()
	if r.provider.IsTracking() {
		r.acquired = true
		return pos
	}
	if r.acquired {
		return pos
	}
	return mgl64.Vec3{0, r.cfg.HeadHeight, 0}
}

// Frustums returns the current left and right eye frustums. Check Valid
// before first use: until a first successful Tick per eye, the zero value
// is returned.
func (r *Rig) Frustums() (left, right projection.Frustum) {
	return r.frustums[LeftEye], r.frustums[RightEye]
}

// Valid reports whether each eye has produced at least one frustum.
func (r *Rig) Valid() (left, right bool) {
	return r.valid[LeftEye], r.valid[RightEye]
}

// Eyes returns the world-space eye positions from the last Tick.
func (r *Rig) Eyes() (left, right mgl64.Vec3) {
	return r.eyes[LeftEye], r.eyes[RightEye]
}

// Head returns the resolved head-local position from the last Tick.
func (r *Rig) Head() mgl64.Vec3 {
	return r.head
}

// State returns the diagnostic snapshot for the current frame.
func (r *Rig) State() State {
	s := State{
		Frame:      r.frames,
		Head:       r.head,
		LeftValid:  r.valid[LeftEye],
		RightValid: r.valid[RightEye],
	}
	if r.provider != nil && r.providerOK {
		s.Tracking = r.provider.IsTracking()
		s.Status = r.provider.Status()
	} else {
		s.Status = "no tracking configured"
	}
	return s
}

// Close stops the tracking provider.
func (r *Rig) Close() {
	if r.provider != nil {
		r.provider.Stop()
	}
}

func (r *Rig) toWorld(v mgl64.Vec3) mgl64.Vec3 {
	return r.position.Add(r.orientation.Rotate(v))
}
