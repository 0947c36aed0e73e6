package tracking

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-cave/internal/log"
)

// Pose datagram layout, big-endian:
//
//	0:4   magic "CAVP"
//	4:6   version (currently 1)
//	6:8   sensor index
//	8:32  position X, Y, Z as float64
//
// Anything shorter than the header, or with an unknown magic or version, is
// discarded per-packet without tearing down the socket. The upstream VRPN
// wire format is not specified here; trackers bridge to this datagram.
const (
	wireMagic      = "CAVP"
	wireVersion    = 1
	wireHeaderSize = 8
	wireSize       = 32
)

// EncodePose builds a pose datagram for the given sensor index. Used by the
// tracksim binary and by tests.
func EncodePose(sensor int, pos mgl64.Vec3) []byte {
	b := make([]byte, wireSize)
	copy(b[0:4], wireMagic)
	binary.BigEndian.PutUint16(b[4:6], wireVersion)
	binary.BigEndian.PutUint16(b[6:8], uint16(sensor))
	binary.BigEndian.PutUint64(b[8:16], math.Float64bits(pos.X()))
	binary.BigEndian.PutUint64(b[16:24], math.Float64bits(pos.Y()))
	binary.BigEndian.PutUint64(b[24:32], math.Float64bits(pos.Z()))
	return b
}

// decodePose parses a pose datagram. ok is false for malformed packets.
func decodePose(b []byte) (sensor int, pos mgl64.Vec3, ok bool) {
	if len(b) < wireHeaderSize {
		return 0, mgl64.Vec3{}, false
	}
	if string(b[0:4]) != wireMagic || binary.BigEndian.Uint16(b[4:6]) != wireVersion {
		return 0, mgl64.Vec3{}, false
	}
	if len(b) < wireSize {
		return 0, mgl64.Vec3{}, false
	}
	sensor = int(binary.BigEndian.Uint16(b[6:8]))
	pos = mgl64.Vec3{
		math.Float64frombits(binary.BigEndian.Uint64(b[8:16])),
		math.Float64frombits(binary.BigEndian.Uint64(b[16:24])),
		math.Float64frombits(binary.BigEndian.Uint64(b[24:32])),
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(pos[i]) || math.IsInf(pos[i], 0) {
			return 0, mgl64.Vec3{}, false
		}
	}
	return sensor, pos, true
}

// UDPConfig configures the network tracking provider.
type UDPConfig struct {
	// Address and Port are the local bind address for inbound datagrams.
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`

	// Device names the upstream tracker, informational only (it appears in
	// Status output).
	Device string `yaml:"device"`

	// Sensor selects which sensor index to accept; datagrams for other
	// sensors are ignored.
	Sensor int `yaml:"sensor"`

	// Timeout is how long to keep reporting tracking after the last sample
	// before flipping to lost.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultUDPConfig returns the recommended network provider settings.
func DefaultUDPConfig() UDPConfig {
	return UDPConfig{
		Address: "0.0.0.0",
		Port:    3883, // VRPN's registered port
		Sensor:  0,
		Timeout: 500 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c UDPConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.Sensor < 0 || c.Sensor > 65535 {
		return fmt.Errorf("sensor index out of range: %d", c.Sensor)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// UDPProvider receives head positions as pose datagrams over a
// connectionless socket. Poll drains everything currently buffered without
// waiting and keeps the newest well-formed sample.
type UDPProvider struct {
	state
	cfg      UDPConfig
	conn     *net.UDPConn
	lastRecv time.Time
	buf      [512]byte

	logger *slog.Logger
}

// NewUDPProvider creates a network tracking provider.
func NewUDPProvider(cfg UDPConfig) *UDPProvider {
	return &UDPProvider{
		state:  newState(),
		cfg:    cfg,
		logger: log.Component("tracking.udp"),
	}
}

// Start binds the socket. Returns false (non-fatal) when the address is
// unavailable; the caller falls back to a static head position.
func (p *UDPProvider) Start() bool {
	if p.conn != nil {
		return true
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{
		IP:   net.ParseIP(p.cfg.Address),
		Port: p.cfg.Port,
	})
	if err != nil {
		p.logger.Warn("bind failed, falling back to static head",
			"address", p.cfg.Address, "port", p.cfg.Port, "error", err)
		return false
	}
	p.conn = conn
	p.logger.Info("listening for pose datagrams", "addr", conn.LocalAddr(), "sensor", p.cfg.Sensor)
	return true
}

// Stop closes the socket. Idempotent, safe when never started.
func (p *UDPProvider) Stop() {
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	p.setTracking(false)
}

// Addr returns the bound local address, or nil before Start. Tests use it
// to target an ephemeral port.
func (p *UDPProvider) Addr() *net.UDPAddr {
	if p.conn == nil {
		return nil
	}
	return p.conn.LocalAddr().(*net.UDPAddr)
}

// Poll drains all buffered datagrams without blocking. Malformed packets
// and packets for other sensors are dropped silently. Tracking flips to
// lost after the configured timeout with no samples; the last known good
// position keeps being returned either way.
func (p *UDPProvider) Poll() mgl64.Vec3 {
	if p.conn == nil {
		return p.last
	}

	got := false
	for {
		// A deadline in the immediate future returns buffered datagrams but
		// never waits for new ones. An already-expired deadline would fail
		// the read before the syscall and drain nothing.
		_ = p.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		n, _, err := p.conn.ReadFromUDP(p.buf[:])
		if err != nil {
			break
		}
		sensor, pos, ok := decodePose(p.buf[:n])
		if !ok || sensor != p.cfg.Sensor {
			continue
		}
		p.update(pos)
		got = true
	}

	if got {
		p.lastRecv = time.Now()
		p.setTracking(true)
	} else if p.tracking && time.Since(p.lastRecv) > p.cfg.Timeout {
		p.logger.Info("tracking lost", "timeout", p.cfg.Timeout)
		p.setTracking(false)
	}
	return p.last
}

// Status describes the connection state for diagnostics.
func (p *UDPProvider) Status() string {
	if p.conn == nil {
		return "udp tracking stopped"
	}
	state := "waiting for data"
	if p.tracking {
		state = "tracking"
	}
	return fmt.Sprintf("udp %s sensor %d device %q: %s", p.conn.LocalAddr(), p.cfg.Sensor, p.cfg.Device, state)
}
