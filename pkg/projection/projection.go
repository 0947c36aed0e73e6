// Package projection implements the off-axis (asymmetric frustum)
// perspective projection used for head-tracked display walls.
//
// The math follows Kooima's generalized perspective projection: given the
// three defining corners of a planar rectangular screen and an eye position,
// it produces the near-plane frustum extents and the camera basis that keep
// on-screen geometry in correct real-world perspective as the eye moves off
// the screen's perpendicular bisector.
//
// Compute is a pure function with no state. Callers that need the previous
// frustum to persist across a degenerate frame (eye at or behind the screen
// plane) keep their own copy and skip the update when an error is returned.
package projection

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Errors returned by Compute. Both mean "skip this frame": the caller keeps
// its previous frustum rather than rendering with degenerate parameters.
var (
	// ErrBehindScreen means the eye is at or behind the screen plane, or
	// closer to it than the near clip distance.
	ErrBehindScreen = errors.New("projection: eye at or behind screen plane")

	// ErrDegenerateScreen means the screen corners do not span a plane.
	ErrDegenerateScreen = errors.New("projection: screen has no area")
)

const epsilon = 1e-9

// Basis is the orthonormal camera orientation produced by the projection:
// Right and Up lie in the screen plane, Normal points from the screen
// toward the viewer.
type Basis struct {
	Right  mgl64.Vec3
	Up     mgl64.Vec3
	Normal mgl64.Vec3
}

// Frustum holds the per-eye output of the off-axis projection. Extents are
// measured on the near plane and are asymmetric in general (Left != -Right
// once the eye leaves the screen's perpendicular bisector).
type Frustum struct {
	Left   float64
	Right  float64
	Bottom float64
	Top    float64
	Near   float64
	Far    float64

	// Basis is the camera orientation. Position is the eye position,
	// passed through exactly (not reprojected).
	Basis    Basis
	Position mgl64.Vec3
}

// Matrix returns the asymmetric perspective projection matrix for the
// frustum, for handing to a renderer.
func (f Frustum) Matrix() mgl64.Mat4 {
	return mgl64.Frustum(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
}

// CenterX returns the horizontal center of the near-plane extents. Useful
// as a scalar measure of how far the frustum has sheared sideways.
func (f Frustum) CenterX() float64 {
	return (f.Left + f.Right) / 2
}

// Compute derives the off-axis frustum for one eye looking at a planar
// rectangular screen defined by its bottom-left, bottom-right and top-left
// corners in world space.
//
// The screen basis is right = normalize(br-bl), up = normalize(tl-bl),
// normal = right x up. The near-plane extents are the projections of the
// eye-to-corner vectors onto that basis, scaled by near/d where d is the
// perpendicular eye-to-plane distance. Results are exact, not approximated.
func Compute(eye, bl, br, tl mgl64.Vec3, near, far float64) (Frustum, error) {
	vr := br.Sub(bl)
	vu := tl.Sub(bl)
	if vr.Len() < epsilon || vu.Len() < epsilon {
		return Frustum{}, ErrDegenerateScreen
	}
	right := vr.Normalize()
	up := vu.Normalize()
	normal := right.Cross(up)
	if normal.Len() < epsilon {
		return Frustum{}, ErrDegenerateScreen
	}
	normal = normal.Normalize()

	// Eye-to-corner vectors.
	va := bl.Sub(eye)
	vb := br.Sub(eye)
	vc := tl.Sub(eye)

	// Perpendicular distance from the eye to the screen plane. The eye must
	// be strictly in front, further away than the near clip, or the frustum
	// would invert.
	d := -va.Dot(normal)
	if d <= near || math.IsNaN(d) {
		return Frustum{}, ErrBehindScreen
	}

	s := near / d
	return Frustum{
		Left:     right.Dot(va) * s,
		Right:    right.Dot(vb) * s,
		Bottom:   up.Dot(va) * s,
		Top:      up.Dot(vc) * s,
		Near:     near,
		Far:      far,
		Basis:    Basis{Right: right, Up: up, Normal: normal},
		Position: eye,
	}, nil
}
