package web

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/falalabs/go-fala/pkg/backend"
	"github.com/falalabs/go-fala/pkg/models"
	"github.com/falalabs/go-fala/pkg/protocol"
)

// handleTranscribe accepts a multipart recording and returns canned text.
func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "missing audio part"})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "unreadable audio part"})
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "unreadable audio part"})
	}

	lang := c.FormValue("language")
	if lang == "" {
		lang = "en"
	}

	return c.JSON(backend.TranscribeResponse{
		Text:     cannedTranscription(audio),
		Language: lang,
	})
}

// handleChat answers a generation request with a canned reply and
// simulated timing for the resolved model.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req backend.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "empty text"})
	}

	resp := s.generate(req.Text, req.Model)

	s.mu.Lock()
	s.turnsServed++
	s.mu.Unlock()

	return c.JSON(resp)
}

// generate builds the canned reply plus simulated performance data.
func (s *Server) generate(text, modelHint string) backend.GenerateResponse {
	m := s.activeModel(modelHint)
	latency, tps := simulatedPerformance(m)
	return backend.GenerateResponse{
		Text:            cannedReply(text),
		Model:           m.ID,
		LatencySeconds:  latency,
		TokensPerSecond: tps,
	}
}

// handleModels returns the catalog and the active model.
func (s *Server) handleModels(c *fiber.Ctx) error {
	s.mu.Lock()
	catalog := make([]models.Info, len(s.catalog))
	copy(catalog, s.catalog)
	current := s.currentModel
	s.mu.Unlock()

	return c.JSON(backend.ModelsResponse{Models: catalog, Current: current})
}

// handleSwitchModel activates a model and notifies websocket clients.
func (s *Server) handleSwitchModel(c *fiber.Ctx) error {
	var req struct {
		Model string `json:"model"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad request body"})
	}

	if _, ok := s.findModel(req.Model); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "model not found"})
	}

	s.mu.Lock()
	s.currentModel = req.Model
	s.mu.Unlock()

	s.logger.Info("model switched", "model", req.Model)
	if msg, err := protocol.NewModelSwitchedMessage(req.Model); err == nil {
		if data, err := msg.Bytes(); err == nil {
			s.hub.Broadcast(data)
		}
	}

	return c.JSON(fiber.Map{"model": req.Model})
}

// handleTTS returns synthesized audio for the given text. The dev
// server answers with silence of a plausible duration.
func (s *Server) handleTTS(c *fiber.Ctx) error {
	var req backend.SynthesizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "empty text"})
	}

	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()

	// Roughly 60ms of audio per word keeps playback short but nonzero.
	words := len(strings.Fields(req.Text))
	audio := wavSilence(60 * (words + 1))

	c.Set("Content-Type", "audio/wav")
	c.Set("X-TTS-Engine", engine)
	return c.Send(audio)
}

// handleEngines lists the synthesis engines.
func (s *Server) handleEngines(c *fiber.Ctx) error {
	s.mu.Lock()
	engines := make([]string, len(s.engines))
	copy(engines, s.engines)
	current := s.engine
	s.mu.Unlock()

	return c.JSON(backend.EnginesResponse{Engines: engines, Current: current})
}

// handleSwitchEngine activates a synthesis engine.
func (s *Server) handleSwitchEngine(c *fiber.Ctx) error {
	var req struct {
		Engine string `json:"engine"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.engines {
		if e == req.Engine {
			s.engine = req.Engine
			return c.JSON(fiber.Map{"engine": req.Engine})
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "engine not found"})
}
