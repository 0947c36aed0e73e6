package tracking

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/teslashibe/go-cave/internal/log"
)

// MatchPolicy controls how strictly device names are matched when no exact
// role path or serial match is found. The reference hardware reports names
// like "VIVE Tracker 3.0" but third-party trackers may carry only one of
// the keywords, so the strictness is configurable.
type MatchPolicy int

const (
	// MatchStrict requires both "vive" and "tracker" in the device name.
	MatchStrict MatchPolicy = iota

	// MatchPermissive accepts either keyword.
	MatchPermissive
)

// excludedKeywords are device classes that are never head trackers.
var excludedKeywords = []string{"controller", "hmd", "headset"}

// DeviceConfig configures the device-registry provider.
type DeviceConfig struct {
	// Role selects the tracker by its assigned role path. RoleAny binds the
	// first device passing the name heuristic.
	Role Role `yaml:"role"`

	// Serial, when set, selects by exact serial and takes priority over
	// role matching.
	Serial string `yaml:"serial"`

	// Policy is the name-heuristic strictness used when no exact match is
	// found.
	Policy MatchPolicy `yaml:"match_policy"`

	// RescanEvery is the number of polls between registry scans while no
	// device is bound. Scanning on every poll would burn cycles on name
	// matching each frame; the default re-scans about once per second at
	// 60Hz.
	RescanEvery int `yaml:"rescan_every"`
}

// DefaultDeviceConfig returns the recommended device provider settings.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Role:        RoleAny,
		Policy:      MatchStrict,
		RescanEvery: 60,
	}
}

// Validate checks the configuration.
func (c DeviceConfig) Validate() error {
	if c.RescanEvery <= 0 {
		return fmt.Errorf("rescan_every must be positive, got %d", c.RescanEvery)
	}
	if c.Policy != MatchStrict && c.Policy != MatchPermissive {
		return fmt.Errorf("unknown match policy %d", c.Policy)
	}
	return nil
}

// DeviceProvider tracks the head through a role- or serial-matched device in
// an injected Registry. Hot-plug events are queued by the subscription and
// drained synchronously at the top of Poll, so binding state only changes on
// the frame thread.
type DeviceProvider struct {
	state
	cfg DeviceConfig
	reg Registry

	events    chan Event
	bound     uuid.UUID
	boundName string
	hasBound  bool
	started   bool
	sinceScan int

	logger *slog.Logger
}

// NewDeviceProvider creates a provider matching devices from reg. A nil
// registry is allowed: Start will report the subsystem as unavailable.
func NewDeviceProvider(reg Registry, cfg DeviceConfig) *DeviceProvider {
	return &DeviceProvider{
		state:  newState(),
		cfg:    cfg,
		reg:    reg,
		logger: log.Component("tracking.device"),
	}
}

// Start subscribes to hot-plug events and scans for an initial device.
// Returns false if no device registry is available; an empty registry is
// not a failure, the provider keeps re-scanning from Poll.
func (p *DeviceProvider) Start() bool {
	if p.reg == nil {
		p.logger.Warn("no device registry available, falling back to static head")
		return false
	}
	if p.started {
		return true
	}
	p.events = make(chan Event, 16)
	p.reg.Subscribe(p.events)
	p.started = true
	p.scan()
	return true
}

// Stop unbinds the device and releases the registry subscription. Safe to
// call repeatedly and when Start was never called.
func (p *DeviceProvider) Stop() {
	if p.started {
		p.reg.Unsubscribe(p.events)
		p.events = nil
		p.started = false
	}
	p.unbind()
}

// Poll drains pending hot-plug events, re-scans at the configured cadence
// while unbound, and samples the bound device. Always returns the last
// known good position.
func (p *DeviceProvider) Poll() mgl64.Vec3 {
	if !p.started {
		return p.last
	}
	p.drainEvents()

	if !p.hasBound {
		p.sinceScan++
		if p.sinceScan >= p.cfg.RescanEvery {
			p.sinceScan = 0
			p.scan()
		}
	}

	if p.hasBound {
		if pos, ok := p.reg.Pose(p.bound); ok {
			p.setTracking(true)
			p.update(pos)
		}
	}
	return p.last
}

// Status describes the binding state for diagnostics.
func (p *DeviceProvider) Status() string {
	switch {
	case !p.started:
		return "device tracking stopped"
	case p.hasBound:
		return fmt.Sprintf("bound to %q (role %s)", p.boundName, p.cfg.Role)
	default:
		return fmt.Sprintf("scanning for tracker (role %s)", p.cfg.Role)
	}
}

// drainEvents handles queued add/remove notifications. Events mutate
// binding state here, on the frame thread, never in the registry's
// goroutine.
func (p *DeviceProvider) drainEvents() {
	for {
		select {
		case ev := <-p.events:
			switch ev.Kind {
			case DeviceAdded:
				if !p.hasBound && p.matches(ev.Device) {
					p.bind(ev.Device)
				}
			case DeviceRemoved:
				if p.hasBound && ev.Device.ID == p.bound {
					p.logger.Info("bound tracker removed", "name", p.boundName)
					p.unbind()
					// With no specific role to wait for, another connected
					// tracker can take over immediately.
					if p.cfg.Role == RoleAny && p.cfg.Serial == "" {
						p.scan()
					}
				}
			}
		default:
			return
		}
	}
}

// scan walks the registry for a matching device. Exact serial or role-path
// matches win over the name heuristic.
func (p *DeviceProvider) scan() {
	devs := p.reg.Devices()
	for _, d := range devs {
		if p.matchesExact(d) {
			p.bind(d)
			return
		}
	}
	for _, d := range devs {
		if p.matchesHeuristic(d) {
			p.bind(d)
			return
		}
	}
}

// matches reports whether a device satisfies the configuration, exact or
// heuristic.
func (p *DeviceProvider) matches(d Device) bool {
	return p.matchesExact(d) || p.matchesHeuristic(d)
}

func (p *DeviceProvider) matchesExact(d Device) bool {
	if p.cfg.Serial != "" {
		return d.Serial == p.cfg.Serial
	}
	return p.cfg.Role != RoleAny && d.RolePath == p.cfg.Role.Path()
}

func (p *DeviceProvider) matchesHeuristic(d Device) bool {
	if p.cfg.Serial != "" {
		// Serial selection is exact-only.
		return false
	}
	name := strings.ToLower(d.Name)
	for _, kw := range excludedKeywords {
		if strings.Contains(name, kw) {
			return false
		}
	}
	if p.cfg.Role == RoleAny {
		// Any mode: first device not excluded above.
		return true
	}
	vive := strings.Contains(name, "vive")
	tracker := strings.Contains(name, "tracker")
	if p.cfg.Policy == MatchPermissive {
		return vive || tracker
	}
	return vive && tracker
}

func (p *DeviceProvider) bind(d Device) {
	p.bound = d.ID
	p.boundName = d.Name
	p.hasBound = true
	p.sinceScan = 0
	p.logger.Info("tracker bound", "name", d.Name, "serial", d.Serial, "role_path", d.RolePath)
	if pos, ok := p.reg.Pose(d.ID); ok {
		p.setTracking(true)
		p.update(pos)
	}
}

func (p *DeviceProvider) unbind() {
	p.hasBound = false
	p.bound = uuid.Nil
	p.boundName = ""
	p.setTracking(false)
}
