package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-cave/pkg/hub"
	"github.com/teslashibe/go-cave/pkg/protocol"
)

// handleStatus returns the latest tracking state snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.state)
}

// handleFrustum returns the latest per-eye frustum parameters
func (s *Server) handleFrustum(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.frustum)
}

// handleGetWall returns the active wall geometry
func (s *Server) handleGetWall(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(protocol.WallData{
		Width:        s.wall.Width,
		Height:       s.wall.Height,
		Distance:     s.wall.Distance,
		CenterHeight: s.wall.CenterHeight,
	})
}

// handleSetWall applies new wall geometry from the dashboard
func (s *Server) handleSetWall(c *fiber.Ctx) error {
	var req protocol.WallData
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid wall geometry payload",
		})
	}

	wall := req.Wall()
	if err := wall.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if s.OnWallUpdate == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "wall update not configured",
		})
	}
	if err := s.OnWallUpdate(wall); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	s.wall = wall
	s.mu.Unlock()

	return c.JSON(fiber.Map{"ok": true})
}

// handleStateWS streams per-frame state and frustum messages
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)
	client.Run() // Blocks until disconnect
}
