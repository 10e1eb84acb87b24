// Package backend provides the client for the tutor backend service.
//
// The backend exposes speech-to-text, chat generation, model management
// and text-to-speech over HTTP. The package abstracts each concern
// behind a small interface so the conversation pipeline can be tested
// against mocks and so individual services can be swapped out.
package backend

import (
	"context"

	"github.com/falalabs/go-fala/pkg/models"
)

// Transcriber converts captured speech audio to text.
type Transcriber interface {
	// Transcribe converts a WAV-encoded clip to text.
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error)
}

// Generator produces tutor replies from user text.
type Generator interface {
	// Generate produces a reply for the given request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// Synthesizer converts tutor replies to speech audio.
type Synthesizer interface {
	// Synthesize converts text to WAV-encoded audio.
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// Engines lists the available synthesis engines.
	Engines(ctx context.Context) (*EnginesResponse, error)

	// SwitchEngine switches the active synthesis engine.
	SwitchEngine(ctx context.Context, engine string) error
}

// Catalog exposes the backend's model catalog.
type Catalog interface {
	// ListModels returns the selectable models and the active one.
	ListModels(ctx context.Context) (*ModelsResponse, error)

	// SwitchModel makes the backend serve subsequent chats with the
	// given model.
	SwitchModel(ctx context.Context, model string) error
}

// Service is the full backend surface.
type Service interface {
	Transcriber
	Generator
	Synthesizer
	Catalog

	// Health checks backend reachability.
	Health(ctx context.Context) error

	// Close releases client resources.
	Close() error
}

// TranscribeRequest carries one recorded utterance.
type TranscribeRequest struct {
	// Audio is the WAV-encoded recording.
	Audio []byte

	// Language hints the expected language (e.g. "pt", "en").
	Language string
}

// TranscribeResponse is the recognized text.
type TranscribeResponse struct {
	// Text is the transcription. May be empty when nothing was
	// recognized; callers decide how to handle that.
	Text string `json:"text"`

	// Language is the detected language, if reported.
	Language string `json:"language,omitempty"`
}

// GenerateRequest asks for a tutor reply.
type GenerateRequest struct {
	// Text is the user's utterance.
	Text string `json:"text"`

	// Model overrides the backend's active model for this request.
	Model string `json:"model,omitempty"`

	// Context is the recent conversation, oldest first.
	Context []ContextTurn `json:"context,omitempty"`

	// MaxTokens caps the reply length. Zero uses the backend default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature is the sampling temperature. Zero uses the default.
	Temperature float64 `json:"temperature,omitempty"`
}

// ContextTurn is one prior exchange included as context.
type ContextTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// GenerateResponse is the tutor's reply with performance data.
type GenerateResponse struct {
	// Text is the reply.
	Text string `json:"response"`

	// Model is the model that produced the reply.
	Model string `json:"model"`

	// LatencySeconds is the backend-measured generation time.
	LatencySeconds float64 `json:"response_time"`

	// TokensPerSecond is the observed throughput. Zero when the
	// backend estimated rather than measured it.
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// SynthesizeRequest asks for speech audio.
type SynthesizeRequest struct {
	// Text to speak.
	Text string `json:"text"`

	// Engine overrides the active synthesis engine.
	Engine string `json:"engine,omitempty"`
}

// SynthesizeResponse is the synthesized audio.
type SynthesizeResponse struct {
	// Audio is WAV-encoded speech.
	Audio []byte

	// Engine is the engine that produced it.
	Engine string
}

// EnginesResponse lists synthesis engines.
type EnginesResponse struct {
	// Engines are the installed engine names.
	Engines []string `json:"engines"`

	// Current is the active engine.
	Current string `json:"current"`
}

// ModelsResponse is the backend's model catalog.
type ModelsResponse struct {
	// Models are the selectable models.
	Models []models.Info `json:"models"`

	// Current is the backend's active model id.
	Current string `json:"current"`
}
