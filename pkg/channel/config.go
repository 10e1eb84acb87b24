package channel

import (
	"log/slog"
	"time"
)

// Default connection settings.
const (
	// DefaultURL points at a local tutor backend.
	DefaultURL = "ws://127.0.0.1:8000/ws"

	// DefaultReconnectInterval is the fixed delay between reconnect
	// attempts. The delay does not grow; a tutoring session talks to
	// one local backend and should come back as soon as it does.
	DefaultReconnectInterval = 3 * time.Second

	// DefaultHandshakeTimeout bounds the websocket handshake.
	DefaultHandshakeTimeout = 10 * time.Second
)

// Config holds connection settings.
type Config struct {
	// URL is the backend websocket endpoint.
	URL string

	// ReconnectInterval is the fixed delay between reconnect attempts.
	ReconnectInterval time.Duration

	// MaxReconnectAttempts caps consecutive failed reconnects.
	// Zero means retry forever.
	MaxReconnectAttempts int

	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout time.Duration

	// Clock supplies timers. Tests inject a manual clock.
	Clock Clock

	// Logger receives connection logs.
	Logger *slog.Logger
}

// DefaultConfig returns the default connection settings.
func DefaultConfig() *Config {
	return &Config{
		URL:               DefaultURL,
		ReconnectInterval: DefaultReconnectInterval,
		HandshakeTimeout:  DefaultHandshakeTimeout,
		Clock:             realClock{},
		Logger:            slog.Default(),
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

// WithURL sets the websocket endpoint.
func WithURL(url string) Option {
	return func(c *Config) { c.URL = url }
}

// WithReconnectInterval sets the fixed reconnect delay.
func WithReconnectInterval(d time.Duration) Option {
	return func(c *Config) { c.ReconnectInterval = d }
}

// WithMaxReconnectAttempts caps consecutive failed reconnects.
func WithMaxReconnectAttempts(n int) Option {
	return func(c *Config) { c.MaxReconnectAttempts = n }
}

// WithHandshakeTimeout bounds the websocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Config) { c.HandshakeTimeout = d }
}

// WithClock injects a clock for tests.
func WithClock(clk Clock) Option {
	return func(c *Config) { c.Clock = clk }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
