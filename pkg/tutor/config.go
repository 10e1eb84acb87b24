package tutor

import (
	"log/slog"

	"github.com/falalabs/go-fala/pkg/models"
	"github.com/falalabs/go-fala/pkg/playback"
)

// Config holds pipeline settings.
type Config struct {
	// Mode is the conversation optimization mode.
	Mode models.Mode

	// Streaming dispatches turns over the persistent channel instead
	// of direct backend calls. Requires a Channel.
	Streaming bool

	// Language hints the transcription language.
	Language string

	// Synthesize speaks replies aloud when a player is attached.
	Synthesize bool

	// Channel is the persistent channel, required for streaming mode.
	Channel Channel

	// Player speaks replies. Nil disables playback.
	Player *playback.Player

	// Logger receives pipeline logs.
	Logger *slog.Logger
}

// DefaultConfig returns the default pipeline settings.
func DefaultConfig() *Config {
	return &Config{
		Mode:       models.ModeBalanced,
		Synthesize: true,
		Logger:     slog.Default(),
	}
}

// Option modifies the config.
type Option func(*Config)

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithMode sets the conversation mode.
func WithMode(m models.Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithStreaming enables channel dispatch.
func WithStreaming(ch Channel) Option {
	return func(c *Config) {
		c.Streaming = true
		c.Channel = ch
	}
}

// WithLanguage sets the transcription language hint.
func WithLanguage(lang string) Option {
	return func(c *Config) { c.Language = lang }
}

// WithPlayer attaches a playback player for spoken replies.
func WithPlayer(p *playback.Player) Option {
	return func(c *Config) { c.Player = p }
}

// WithSynthesis toggles speaking replies aloud.
func WithSynthesis(on bool) Option {
	return func(c *Config) { c.Synthesize = on }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
