package rig

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-cave/pkg/tracking"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// mockProvider is a scriptable tracking provider for rig tests.
type mockProvider struct {
	events   tracking.Events
	pos      mgl64.Vec3
	tracking bool
	startOK  bool
	started  bool
	stopped  int
}

func (m *mockProvider) Start() bool {
	m.started = true
	return m.startOK
}
func (m *mockProvider) Stop()                        { m.stopped++ }
func (m *mockProvider) Poll() mgl64.Vec3             { return m.pos }
func (m *mockProvider) IsTracking() bool             { return m.tracking }
func (m *mockProvider) Status() string               { return "mock" }
func (m *mockProvider) SetEvents(ev tracking.Events) { m.events = ev }

func TestRig_StaticFallbackWithoutProvider(t *testing.T) {
	r := New(DefaultConfig())
	r.Tick()

	if got := r.Head(); got != (mgl64.Vec3{0, 1.64, 0}) {
		t.Errorf("head: got %v, want static height position", got)
	}
	l, rv := r.Valid()
	if !l || !rv {
		t.Error("both eyes should be valid after the first tick")
	}
}

func TestRig_EyeSeparation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeadHeight = 1.64
	r := New(cfg)
	r.Tick()

	left, right := r.Eyes()
	half := cfg.EyeSeparation / 2
	if !floatEquals(left.X(), -half) {
		t.Errorf("left eye X: got %v, want %v", left.X(), -half)
	}
	if !floatEquals(right.X(), half) {
		t.Errorf("right eye X: got %v, want %v", right.X(), half)
	}
	if !floatEquals(left.Y(), 1.64) || !floatEquals(right.Y(), 1.64) {
		t.Errorf("eye heights: got %v/%v, want head height", left.Y(), right.Y())
	}
}

func TestRig_SwapEyes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwapEyes = true
	r := New(cfg)
	r.Tick()

	left, right := r.Eyes()
	half := cfg.EyeSeparation / 2
	if !floatEquals(left.X(), half) {
		t.Errorf("swapped left eye X: got %v, want %v", left.X(), half)
	}
	if !floatEquals(right.X(), -half) {
		t.Errorf("swapped right eye X: got %v, want %v", right.X(), -half)
	}
}

func TestRig_RoundTripScenario(t *testing.T) {
	// Reference installation: 6x2m wall, 2m away, center 1.75m up, 63mm eye
	// separation, static head at 1.64m.
	cfg := DefaultConfig()
	r := New(cfg)
	r.SetProvider(tracking.NewStaticHeight(1.64))
	r.Tick()

	lv, rv := r.Valid()
	if !lv || !rv {
		t.Fatal("both eyes must be valid")
	}
	left, right := r.Frustums()

	for name, f := range map[string]struct{ l, rr, b, tp float64 }{
		"left":  {left.Left, left.Right, left.Bottom, left.Top},
		"right": {right.Left, right.Right, right.Bottom, right.Top},
	} {
		if !(f.l < f.rr) {
			t.Errorf("%s eye: want Left < Right, got %v >= %v", name, f.l, f.rr)
		}
		if !(f.b < f.tp) {
			t.Errorf("%s eye: want Bottom < Top, got %v >= %v", name, f.b, f.tp)
		}
	}

	// The head sits on the bisector, so the two eye frustums must mirror
	// each other horizontally.
	if !floatEquals(left.Left, -right.Right) {
		t.Errorf("mirror: left.Left=%v, want %v", left.Left, -right.Right)
	}
	if !floatEquals(left.Right, -right.Left) {
		t.Errorf("mirror: left.Right=%v, want %v", left.Right, -right.Left)
	}

	// Moving the head 1m to the left shears the frustum: its horizontal
	// center must move right (toward the wall center).
	before := left.CenterX()
	r.SetProvider(tracking.NewStatic(mgl64.Vec3{-1, 1.64, 0}))
	r.Tick()
	movedLeft, _ := r.Frustums()
	if movedLeft.CenterX() <= before {
		t.Errorf("lateral head move: center %v should exceed %v", movedLeft.CenterX(), before)
	}
}

func TestRig_DegenerateKeepsPreviousFrustum(t *testing.T) {
	r := New(DefaultConfig())
	r.SetProvider(tracking.NewStaticHeight(1.64))
	r.Tick()
	prevLeft, prevRight := r.Frustums()

	// Head behind the wall plane: no eye can produce a frustum, the
	// previous frame's output must persist untouched.
	r.SetProvider(tracking.NewStatic(mgl64.Vec3{0, 1.64, -5}))
	r.Tick()

	left, right := r.Frustums()
	if left != prevLeft {
		t.Errorf("left frustum mutated on degenerate frame:\ngot  %+v\nwant %+v", left, prevLeft)
	}
	if right != prevRight {
		t.Errorf("right frustum mutated on degenerate frame:\ngot  %+v\nwant %+v", right, prevRight)
	}
	lv, rv := r.Valid()
	if !lv || !rv {
		t.Error("previous valid frustums should stay valid")
	}
}

func TestRig_HoldsLastKnownAfterLoss(t *testing.T) {
	r := New(DefaultConfig())
	p := &mockProvider{startOK: true, tracking: true, pos: mgl64.Vec3{0.5, 1.7, 0.1}}
	r.SetProvider(p)

	r.Tick()
	if r.Head() != p.pos {
		t.Fatalf("head while tracking: got %v, want %v", r.Head(), p.pos)
	}

	// Provider loses tracking but keeps serving its last known good
	// position; the rig must keep using it, not snap back to static.
	p.tracking = false
	r.Tick()
	if r.Head() != p.pos {
		t.Errorf("head after loss: got %v, want held position %v", r.Head(), p.pos)
	}
}

func TestRig_StaticUntilFirstAcquisition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeadHeight = 1.8
	r := New(cfg)
	// Provider starts fine but has not acquired anything yet.
	p := &mockProvider{startOK: true, tracking: false, pos: mgl64.Vec3{9, 9, 9}}
	r.SetProvider(p)

	r.Tick()
	if r.Head() != (mgl64.Vec3{0, 1.8, 0}) {
		t.Errorf("head before acquisition: got %v, want static height", r.Head())
	}
}

func TestRig_FailedStartFallsBackToStatic(t *testing.T) {
	r := New(DefaultConfig())
	p := &mockProvider{startOK: false, tracking: true, pos: mgl64.Vec3{9, 9, 9}}
	r.SetProvider(p)

	r.Tick()
	if r.Head() != (mgl64.Vec3{0, 1.64, 0}) {
		t.Errorf("head after failed start: got %v, want static height", r.Head())
	}
	if s := r.State(); s.Tracking {
		t.Error("state should not report tracking after failed start")
	}
}

func TestRig_SetProviderStopsPrevious(t *testing.T) {
	r := New(DefaultConfig())
	first := &mockProvider{startOK: true}
	r.SetProvider(first)
	r.SetProvider(&mockProvider{startOK: true})
	if first.stopped != 1 {
		t.Errorf("previous provider stopped %d times, want 1", first.stopped)
	}
	r.Close()
}

func TestRig_MovedRigRecomputesCorners(t *testing.T) {
	r := New(DefaultConfig())
	r.SetProvider(tracking.NewStaticHeight(1.64))
	r.Tick()
	centered, _ := r.Frustums()

	// Translating the whole rig moves wall and head together: the frustum
	// extents must not change, only the camera position.
	offset := mgl64.Vec3{10, 0, 5}
	r.SetTransform(offset, mgl64.QuatIdent())
	r.Tick()
	moved, _ := r.Frustums()

	if !floatEquals(centered.Left, moved.Left) || !floatEquals(centered.Top, moved.Top) {
		t.Errorf("translated rig changed extents: %+v vs %+v", centered, moved)
	}
	wantPos := centered.Position.Add(offset)
	if moved.Position.Sub(wantPos).Len() > floatTolerance {
		t.Errorf("camera position: got %v, want %v", moved.Position, wantPos)
	}
}

func TestRig_RotatedRigKeepsRelativeGeometry(t *testing.T) {
	r := New(DefaultConfig())
	r.SetProvider(tracking.NewStaticHeight(1.64))
	r.Tick()
	before, _ := r.Frustums()

	// Rotating the rig 90 degrees about Y spins wall and viewer together;
	// the relative geometry, and so the extents, are unchanged.
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	r.SetTransform(mgl64.Vec3{}, rot)
	r.Tick()
	after, _ := r.Frustums()

	for name, pair := range map[string][2]float64{
		"left":   {before.Left, after.Left},
		"right":  {before.Right, after.Right},
		"bottom": {before.Bottom, after.Bottom},
		"top":    {before.Top, after.Top},
	} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Errorf("%s extent changed under rig rotation: %v vs %v", name, pair[0], pair[1])
		}
	}
}
