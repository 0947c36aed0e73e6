// Package web provides a real-time dashboard for the projection rig:
// tracking status, wall geometry editing and a live per-frame frustum feed
// for external renderers.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-cave/internal/log"
	"github.com/teslashibe/go-cave/pkg/hub"
	"github.com/teslashibe/go-cave/pkg/projection"
	"github.com/teslashibe/go-cave/pkg/protocol"
	"github.com/teslashibe/go-cave/pkg/rig"
)

// Server is the dashboard server. The rig loop pushes per-frame snapshots
// through PublishFrame; HTTP handlers and websocket clients only ever see
// copies.
type Server struct {
	app  *fiber.App
	port string

	// Latest published snapshot
	mu      sync.RWMutex
	state   protocol.StateData
	frustum protocol.FrustumData
	wall    projection.Wall

	// Hub for websocket broadcast (thread-safe!)
	stateHub *hub.Hub

	// OnWallUpdate is called when the dashboard submits new wall geometry.
	// The callback runs on a fiber handler goroutine; the rig owner decides
	// when to apply it.
	OnWallUpdate func(projection.Wall) error
}

// NewServer creates a new dashboard server
func NewServer(port string) *Server {
	s := &Server{
		port:     port,
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Cave Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/frustum", s.handleFrustum)
	api.Get("/wall", s.handleGetWall)
	api.Post("/wall", s.handleSetWall)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	go s.stateHub.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()
}

// Shutdown stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishFrame records the frame's snapshot and broadcasts it to websocket
// clients. Called once per rig tick.
func (s *Server) PublishFrame(state rig.State, left, right projection.Frustum, wall projection.Wall) {
	sd := protocol.NewStateData(state)
	fd := protocol.FrustumData{
		Frame: state.Frame,
		Left:  protocol.NewEyeData(left, state.LeftValid),
		Right: protocol.NewEyeData(right, state.RightValid),
	}

	s.mu.Lock()
	s.state = sd
	s.frustum = fd
	s.wall = wall
	s.mu.Unlock()

	if msg, err := protocol.NewMessage(protocol.TypeFrustum, fd); err == nil {
		if raw, err := msg.Bytes(); err == nil {
			s.stateHub.Broadcast(hub.NewJSONMessage(raw))
		}
	}
	if msg, err := protocol.NewMessage(protocol.TypeState, sd); err == nil {
		if raw, err := msg.Bytes(); err == nil {
			s.stateHub.Broadcast(hub.NewJSONMessage(raw))
		}
	}
}

// StateHub returns the broadcast hub for external use
func (s *Server) StateHub() *hub.Hub {
	return s.stateHub
}
