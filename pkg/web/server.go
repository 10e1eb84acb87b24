// Package web implements the development tutor server.
//
// It serves the same REST and websocket surface as the production
// backend but answers with canned transcription, generation and
// synthesis, so the client stack can run end-to-end on a laptop with
// no speech or model runtime installed.
package web

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/falalabs/go-fala/pkg/hub"
	"github.com/falalabs/go-fala/pkg/models"
)

// Server is the dev tutor server.
type Server struct {
	app    *fiber.App
	hub    *hub.Hub
	logger *slog.Logger

	mu           sync.Mutex
	catalog      []models.Info
	currentModel string
	mode         models.Mode
	engines      []string
	engine       string
	turnsServed  int
}

// NewServer creates the dev server with the default model catalog.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:       logger.With("component", "web"),
		hub:          hub.New("events", logger),
		catalog:      defaultCatalog(),
		currentModel: "gemma2:2b",
		mode:         models.ModeBalanced,
		engines:      []string{"piper", "espeak"},
		engine:       "piper",
	}

	app := fiber.New(fiber.Config{
		AppName:               "fala dev tutor",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Post("/transcribe", s.handleTranscribe)
	app.Post("/chat", s.handleChat)
	app.Get("/models", s.handleModels)
	app.Post("/switch-model", s.handleSwitchModel)
	app.Post("/tts", s.handleTTS)
	app.Get("/tts/engines", s.handleEngines)
	app.Post("/tts/switch", s.handleSwitchEngine)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWS))

	s.app = app
	return s
}

// Listen serves until Shutdown.
func (s *Server) Listen(addr string) error {
	go s.hub.Run()
	s.logger.Info("dev tutor server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	s.hub.Stop()
	return s.app.Shutdown()
}

// findModel looks a model up in the catalog.
func (s *Server) findModel(id string) (models.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.catalog {
		if m.ID == id {
			return m, true
		}
	}
	return models.Info{}, false
}

// activeModel resolves the model serving a request: an explicit hint
// wins when it exists, otherwise the server's current model.
func (s *Server) activeModel(hint string) models.Info {
	if hint != "" {
		if m, ok := s.findModel(hint); ok {
			return m
		}
	}
	s.mu.Lock()
	current := s.currentModel
	s.mu.Unlock()
	m, _ := s.findModel(current)
	return m
}
