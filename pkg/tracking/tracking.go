// Package tracking provides pluggable head tracking providers for the
// projection rig.
//
// A Provider produces a head position once per frame through Poll. Providers
// never block: while no device or connection is bound, Poll re-scans at a
// bounded cadence and keeps returning the last known good position, so the
// renderer always has a usable value. Acquisition and loss are edge-triggered
// events, fired exactly once per transition.
//
// Variants:
//   - Static: a fixed configured position, for installations without tracking
//   - DeviceProvider: role- or serial-matched device from an injected Registry
//     (Vive-tracker-style), reacting to hot-plug add/remove events
//   - UDPProvider: network tracking over connectionless pose datagrams
//     (VRPN-style)
//   - CameraProvider: head position estimated from face detection
package tracking

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultHeadHeight is the standing eye height used as the initial
// last-known-good position before any sample arrives, in meters.
const DefaultHeadHeight = 1.64

// DefaultHeadPosition returns the seed position providers report until
// their first real sample.
func DefaultHeadPosition() mgl64.Vec3 {
	return mgl64.Vec3{0, DefaultHeadHeight, 0}
}

// Sample is one tracking measurement. Samples are transient: providers keep
// only the latest one as the last-known-good fallback.
type Sample struct {
	Position mgl64.Vec3
	Valid    bool
	Time     time.Time
}

// Events holds optional provider callbacks. All callbacks fire synchronously
// on the frame thread, inside Start, Stop or Poll; consumers need no locking.
type Events struct {
	// OnAcquired fires once per transition into the tracking state.
	OnAcquired func()

	// OnLost fires once per transition out of the tracking state.
	OnLost func()

	// OnPosition fires for every new position sample.
	OnPosition func(mgl64.Vec3)
}

// Provider is a source of real-time head positions.
//
// Lifecycle: Start attempts to acquire the underlying resource and returns
// false (non-fatal) if it is unavailable; the caller falls back to a static
// head position. Poll is called once per frame, must not block, and is safe
// to call while unacquired. Stop releases all subscriptions and sockets,
// is idempotent, and is safe to call when Start was never called.
type Provider interface {
	Start() bool
	Stop()
	Poll() mgl64.Vec3
	IsTracking() bool
	Status() string
	SetEvents(Events)
}

// state is the bookkeeping shared by all providers: the last known good
// position, the tracking flag, and edge-triggered event dispatch.
type state struct {
	events   Events
	last     mgl64.Vec3
	tracking bool
}

func newState() state {
	return state{last: DefaultHeadPosition()}
}

// SetEvents installs the event callbacks. Install before Start to observe
// the initial acquisition.
func (s *state) SetEvents(ev Events) {
	s.events = ev
}

// IsTracking reports whether the provider currently has valid tracking data.
func (s *state) IsTracking() bool {
	return s.tracking
}

// setTracking flips the tracking flag, firing the matching event exactly
// once per transition.
func (s *state) setTracking(on bool) {
	if on == s.tracking {
		return
	}
	s.tracking = on
	if on {
		if s.events.OnAcquired != nil {
			s.events.OnAcquired()
		}
	} else {
		if s.events.OnLost != nil {
			s.events.OnLost()
		}
	}
}

// update records a new good sample and notifies listeners.
func (s *state) update(pos mgl64.Vec3) {
	s.last = pos
	if s.events.OnPosition != nil {
		s.events.OnPosition(pos)
	}
}
