// Package web provides a real-time dashboard for the vigil monitor
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/vigilabs/go-vigil/internal/log"
	"github.com/vigilabs/go-vigil/pkg/camera"
	"github.com/vigilabs/go-vigil/pkg/drowsy"
	"github.com/vigilabs/go-vigil/pkg/hub"
	"github.com/vigilabs/go-vigil/pkg/monitor"
)

// VigilState is the dashboard's view of the monitor: level-triggered,
// refreshed every frame.
type VigilState struct {
	Running  bool                 `json:"running"`
	Faces    []monitor.FaceStatus `json:"faces"`
	Alerting bool                 `json:"alerting"` // true if any face alerts
	Updated  string               `json:"updated"`
}

// AlertEvent is an edge-triggered alert transition.
type AlertEvent struct {
	Time     string `json:"time"`
	FaceID   string `json:"face_id"`
	Alerting bool   `json:"alerting"`
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, alert, face, config, error
	Message string `json:"message"`
}

// Monitor is the part of the pipeline the dashboard drives.
type Monitor interface {
	Statuses() []monitor.FaceStatus
	IsRunning() bool
	Thresholds() drowsy.Config
	UpdateThresholds(drowsy.Config) error
}

// Server is the web dashboard server
type Server struct {
	app  *fiber.App
	port string

	monitor Monitor
	camMgr  *camera.Manager

	// State
	state   VigilState
	stateMu sync.RWMutex

	// Log buffer (last 500 entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast (thread-safe!)
	statusHub *hub.Hub
	alertHub  *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates a new web dashboard server
func NewServer(port string, mon Monitor) *Server {
	s := &Server{
		port:      port,
		monitor:   mon,
		logs:      make([]LogEntry, 0, 500),
		statusHub: hub.New("status"),
		alertHub:  hub.New("alerts"),
		logHub:    hub.New("logs"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Vigil Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleGetConfig)
	api.Post("/config", s.handleSetConfig)
	api.Get("/logs", s.handleGetLogs)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleSetCamera)
	api.Get("/camera/presets", s.handleCameraPresets)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// SetMonitor attaches the pipeline after construction. The monitor
// takes the server as its state updater, so one of the two has to be
// wired late.
func (s *Server) SetMonitor(mon Monitor) {
	s.monitor = mon
}

// SetCameraManager enables the camera configuration API.
func (s *Server) SetCameraManager(mgr *camera.Manager) {
	s.camMgr = mgr
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("web dashboard listening", "addr", "http://localhost:"+s.port)

	// Start all hubs
	go s.statusHub.Run()
	go s.alertHub.Run()
	go s.logHub.Run()
	go s.cameraHub.Run()

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

// UpdateFaces refreshes the dashboard state and broadcasts it.
// It implements monitor.StateUpdater.
func (s *Server) UpdateFaces(faces []monitor.FaceStatus) {
	alerting := false
	for _, f := range faces {
		if f.Report.State == drowsy.StateAlerting {
			alerting = true
			break
		}
	}

	s.stateMu.Lock()
	s.state = VigilState{
		Running:  s.monitor == nil || s.monitor.IsRunning(),
		Faces:    faces,
		Alerting: alerting,
		Updated:  time.Now().Format("15:04:05.000"),
	}
	state := s.state // Copy for broadcast
	s.stateMu.Unlock()

	// Broadcast via hub (thread-safe!)
	s.statusHub.BroadcastJSON(state)
}

// AlertChanged broadcasts an edge-triggered alert transition.
// Wire it to monitor.OnAlert.
func (s *Server) AlertChanged(faceID string, alerting bool) {
	event := AlertEvent{
		Time:     time.Now().Format("15:04:05.000"),
		FaceID:   faceID,
		Alerting: alerting,
	}
	s.alertHub.BroadcastJSON(event)
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > 500 {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	// Broadcast via hub (thread-safe!)
	s.logHub.BroadcastJSON(entry)
}

// SendCameraFrame sends a camera frame to all connected clients
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.BroadcastBinary(jpegData)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
