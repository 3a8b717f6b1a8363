package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/vigilabs/go-vigil/pkg/camera"
	"github.com/vigilabs/go-vigil/pkg/drowsy"
)

// handleStatus returns the current monitor state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleGetConfig returns the active alert thresholds
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	if s.monitor == nil {
		return c.Status(503).JSON(fiber.Map{"error": "monitor not attached"})
	}
	return c.JSON(s.monitor.Thresholds())
}

// handleSetConfig updates alert thresholds at runtime. Invalid values
// are rejected wholesale; nothing is clamped.
func (s *Server) handleSetConfig(c *fiber.Ctx) error {
	if s.monitor == nil {
		return c.Status(503).JSON(fiber.Map{"error": "monitor not attached"})
	}

	// Start from the active config so partial updates work.
	cfg := s.monitor.Thresholds()
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "bad request body"})
	}

	if err := s.monitor.UpdateThresholds(cfg); err != nil {
		var cerr *drowsy.ConfigError
		if errors.As(err, &cerr) {
			return c.Status(422).JSON(fiber.Map{
				"error": cerr.Error(),
				"field": cerr.Field,
			})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	s.AddLog("config", "thresholds updated via API")
	return c.JSON(cfg)
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleGetCamera returns the active capture configuration
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	if s.camMgr == nil {
		return c.Status(503).JSON(fiber.Map{"error": "camera not attached"})
	}
	return c.JSON(s.camMgr.GetConfig())
}

// handleSetCamera updates capture settings at runtime. Accepts partial
// updates and a "preset" key naming a predefined configuration.
func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	if s.camMgr == nil {
		return c.Status(503).JSON(fiber.Map{"error": "camera not attached"})
	}

	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "bad request body"})
	}

	if err := s.camMgr.UpdateConfig(params); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	}

	s.AddLog("config", "camera settings updated via API")
	return c.JSON(s.camMgr.GetConfig())
}

// handleCameraPresets lists the predefined capture configurations
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets": camera.PresetNames(),
	})
}

// handleStatusWS streams level-triggered state snapshots
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Send current status before joining the hub
	s.stateMu.RLock()
	c.WriteJSON(s.state)
	s.stateMu.RUnlock()

	s.statusHub.Serve(c)
}

// handleAlertsWS streams edge-triggered alert transitions
func (s *Server) handleAlertsWS(c *websocket.Conn) {
	s.alertHub.Serve(c)
}

// handleLogsWS streams log entries
func (s *Server) handleLogsWS(c *websocket.Conn) {
	// Send recent logs before joining the hub
	s.logsMu.RLock()
	for _, entry := range s.logs {
		c.WriteJSON(entry)
	}
	s.logsMu.RUnlock()

	s.logHub.Serve(c)
}

// handleCameraWS streams JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	s.cameraHub.Serve(c)
}
