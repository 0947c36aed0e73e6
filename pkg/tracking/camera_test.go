package tracking

import (
	"errors"
	"math"
	"testing"

	"github.com/teslashibe/go-cave/pkg/tracking/detection"
)

// fakeDetector returns a scripted sequence of detection results.
type fakeDetector struct {
	results [][]detection.Detection
	calls   int
	closed  bool
}

func (d *fakeDetector) Detect(jpeg []byte) ([]detection.Detection, error) {
	if d.calls >= len(d.results) {
		return nil, nil
	}
	r := d.results[d.calls]
	d.calls++
	return r, nil
}

func (d *fakeDetector) Close() error {
	d.closed = true
	return nil
}

func centeredFace(conf float64) detection.Detection {
	return detection.Detection{X: 0.45, Y: 0.45, W: 0.1, H: 0.1, Confidence: conf}
}

func frameSource() FrameSource {
	return func() ([]byte, error) { return []byte{0xff, 0xd8}, nil }
}

func TestCameraProvider_CenteredFace(t *testing.T) {
	det := &fakeDetector{results: [][]detection.Detection{{centeredFace(0.9)}}}
	cfg := DefaultCameraConfig()
	p := NewCameraProvider(cfg, frameSource(), det)
	if !p.Start() {
		t.Fatal("Start failed")
	}

	pos := p.Poll()
	if !p.IsTracking() {
		t.Fatal("centered face should acquire tracking")
	}
	// A face at frame center maps to the camera axis: x = 0, y = mount
	// height.
	if math.Abs(pos.X()) > 1e-9 {
		t.Errorf("centered face X: got %v, want 0", pos.X())
	}
	if math.Abs(pos.Y()-cfg.Height) > 1e-9 {
		t.Errorf("centered face Y: got %v, want %v", pos.Y(), cfg.Height)
	}
}

func TestCameraProvider_LateralMapping(t *testing.T) {
	// Face on the left edge of the frame: the camera looks back at the
	// viewer, so the head is to the viewer's right (positive X).
	left := detection.Detection{X: 0.0, Y: 0.45, W: 0.1, H: 0.1, Confidence: 0.9}
	det := &fakeDetector{results: [][]detection.Detection{{left}}}
	p := NewCameraProvider(DefaultCameraConfig(), frameSource(), det)
	if !p.Start() {
		t.Fatal("Start failed")
	}
	pos := p.Poll()
	if pos.X() <= 0 {
		t.Errorf("face on frame left should map to positive X, got %v", pos.X())
	}
}

func TestCameraProvider_LossAfterMisses(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.MissLimit = 3
	det := &fakeDetector{results: [][]detection.Detection{{centeredFace(0.9)}}}
	p := NewCameraProvider(cfg, frameSource(), det)
	var ev eventCounter
	ev.install(p)
	if !p.Start() {
		t.Fatal("Start failed")
	}

	first := p.Poll()
	if !p.IsTracking() {
		t.Fatal("should acquire on the first detection")
	}

	// Subsequent frames have no face; loss fires only after the limit.
	for i := 0; i < cfg.MissLimit-1; i++ {
		p.Poll()
		if !p.IsTracking() {
			t.Fatalf("lost too early, after %d misses", i+1)
		}
	}
	held := p.Poll()
	if p.IsTracking() {
		t.Error("should be lost after the miss limit")
	}
	if ev.lost != 1 {
		t.Errorf("lost events: got %d, want 1", ev.lost)
	}
	if held != first {
		t.Errorf("Poll after loss: got %v, want last known %v", held, first)
	}
}

func TestCameraProvider_RejectsLowConfidence(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.MinConfidence = 0.8
	det := &fakeDetector{results: [][]detection.Detection{{centeredFace(0.5)}}}
	p := NewCameraProvider(cfg, frameSource(), det)
	if !p.Start() {
		t.Fatal("Start failed")
	}
	p.Poll()
	if p.IsTracking() {
		t.Error("low-confidence detection must not acquire tracking")
	}
}

func TestCameraProvider_SourceErrorIsMiss(t *testing.T) {
	det := &fakeDetector{}
	src := FrameSource(func() ([]byte, error) { return nil, errors.New("camera busy") })
	p := NewCameraProvider(DefaultCameraConfig(), src, det)
	if !p.Start() {
		t.Fatal("Start failed")
	}
	p.Poll() // must not panic or error out
	if p.IsTracking() {
		t.Error("a failed frame grab must not produce tracking data")
	}
}

func TestCameraProvider_StartWithoutDetector(t *testing.T) {
	p := NewCameraProvider(DefaultCameraConfig(), nil, nil)
	if p.Start() {
		t.Error("Start should fail without a source and detector")
	}
}

func TestCameraProvider_StopClosesDetector(t *testing.T) {
	det := &fakeDetector{}
	p := NewCameraProvider(DefaultCameraConfig(), frameSource(), det)
	p.Stop()
	p.Stop()
	if !det.closed {
		t.Error("Stop should close the detector")
	}
}
