package tracking

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Device is one entry in a Registry.
type Device struct {
	ID       uuid.UUID
	Name     string
	Serial   string
	RolePath string
}

// EventKind distinguishes hot-plug notifications.
type EventKind int

const (
	DeviceAdded EventKind = iota
	DeviceRemoved
)

// Event is a hot-plug notification from a Registry.
type Event struct {
	Kind   EventKind
	Device Device
}

// Registry abstracts the XR device registry the DeviceProvider matches
// against. Injecting it at construction keeps the provider testable with a
// fake registry; the real implementation wraps whatever runtime owns the
// devices.
//
// Subscribe delivers add/remove events on the given channel. Sends must not
// block: implementations drop events when the channel is full, which the
// provider compensates for with its periodic rescan.
type Registry interface {
	// Devices enumerates the currently connected devices.
	Devices() []Device

	// Device looks up a device by id.
	Device(id uuid.UUID) (Device, bool)

	// Pose reports the current position of a device. ok is false when the
	// device is connected but has no valid pose this frame.
	Pose(id uuid.UUID) (mgl64.Vec3, bool)

	// Subscribe registers a channel for hot-plug events.
	Subscribe(ch chan<- Event)

	// Unsubscribe removes a previously subscribed channel.
	Unsubscribe(ch chan<- Event)
}
