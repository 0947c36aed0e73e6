package projection

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Wall describes the physical display wall in rig-local space. The viewer
// faces -Z with Y up; the wall is an upright rectangle centered on the rig's
// X position at z = -Distance. All dimensions are meters.
type Wall struct {
	// Width and Height are the physical screen dimensions.
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	// Distance is from the rig origin to the wall plane.
	Distance float64 `yaml:"distance" json:"distance"`

	// CenterHeight is the height of the wall's center above the floor.
	CenterHeight float64 `yaml:"center_height" json:"center_height"`
}

// DefaultWall returns the reference powerwall: 6m x 2m, 2m away, centered
// 1.75m above the floor.
func DefaultWall() Wall {
	return Wall{
		Width:        6.0,
		Height:       2.0,
		Distance:     2.0,
		CenterHeight: 1.75,
	}
}

// Validate checks that the wall has positive area and sits in front of the
// viewer.
func (w Wall) Validate() error {
	if w.Width <= 0 {
		return fmt.Errorf("wall width must be positive, got %v", w.Width)
	}
	if w.Height <= 0 {
		return fmt.Errorf("wall height must be positive, got %v", w.Height)
	}
	if w.Distance <= 0 {
		return fmt.Errorf("wall distance must be positive, got %v", w.Distance)
	}
	return nil
}

// Corners returns the rig-local corners of the wall: bottom-left,
// bottom-right, top-left, top-right. The top-right corner is derivable from
// the other three; it is kept for gizmo drawing and debug output only, the
// projection itself uses just bl/br/tl.
func (w Wall) Corners() (bl, br, tl, tr mgl64.Vec3) {
	hw := w.Width / 2
	bottom := w.CenterHeight - w.Height/2
	top := w.CenterHeight + w.Height/2
	z := -w.Distance
	bl = mgl64.Vec3{-hw, bottom, z}
	br = mgl64.Vec3{hw, bottom, z}
	tl = mgl64.Vec3{-hw, top, z}
	tr = mgl64.Vec3{hw, top, z}
	return bl, br, tl, tr
}
