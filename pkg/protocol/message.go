// Package protocol defines the WebSocket message types between the rig
// process and its consumers (dashboard, external renderers).
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-cave/pkg/projection"
	"github.com/teslashibe/go-cave/pkg/rig"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Rig → consumer messages
	TypeState   MessageType = "state"   // Tracking state snapshot
	TypeFrustum MessageType = "frustum" // Per-eye frustum parameters

	// Consumer → rig messages
	TypeWall MessageType = "wall" // Wall geometry update

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// StateData is the per-frame tracking snapshot
type StateData struct {
	Frame    uint64     `json:"frame"`
	Tracking bool       `json:"tracking"`
	Status   string     `json:"status"`
	Head     [3]float64 `json:"head"` // rig-local head position, meters
}

// NewStateData converts a rig snapshot for the wire
func NewStateData(s rig.State) StateData {
	return StateData{
		Frame:    s.Frame,
		Tracking: s.Tracking,
		Status:   s.Status,
		Head:     vec(s.Head),
	}
}

// EyeData carries one eye's frustum parameters and camera transform
type EyeData struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
	Near   float64 `json:"near"`
	Far    float64 `json:"far"`

	Position [3]float64 `json:"position"` // camera world position
	AxisX    [3]float64 `json:"axis_x"`   // camera basis: right
	AxisY    [3]float64 `json:"axis_y"`   // camera basis: up
	AxisZ    [3]float64 `json:"axis_z"`   // camera basis: normal

	Valid bool `json:"valid"`
}

// NewEyeData converts a frustum for the wire
func NewEyeData(f projection.Frustum, valid bool) EyeData {
	return EyeData{
		Left:     f.Left,
		Right:    f.Right,
		Bottom:   f.Bottom,
		Top:      f.Top,
		Near:     f.Near,
		Far:      f.Far,
		Position: vec(f.Position),
		AxisX:    vec(f.Basis.Right),
		AxisY:    vec(f.Basis.Up),
		AxisZ:    vec(f.Basis.Normal),
		Valid:    valid,
	}
}

// FrustumData carries both eyes for one frame
type FrustumData struct {
	Frame uint64  `json:"frame"`
	Left  EyeData `json:"left"`
	Right EyeData `json:"right"`
}

// WallData is a wall geometry update from the dashboard
type WallData struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Distance     float64 `json:"distance"`
	CenterHeight float64 `json:"center_height"`
}

// Wall converts the update to wall geometry
func (w WallData) Wall() projection.Wall {
	return projection.Wall{
		Width:        w.Width,
		Height:       w.Height,
		Distance:     w.Distance,
		CenterHeight: w.CenterHeight,
	}
}

func vec(v mgl64.Vec3) [3]float64 {
	return [3]float64{v.X(), v.Y(), v.Z()}
}
