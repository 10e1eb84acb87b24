package backend

import (
	"log/slog"
	"net/http"
	"time"
)

// Default client settings.
const (
	// DefaultBaseURL points at a local tutor backend.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds a single backend request. Generation on a
	// slow model can take a while, so this is generous.
	DefaultTimeout = 60 * time.Second
)

// Config holds client settings.
type Config struct {
	// BaseURL is the backend's base URL without a trailing slash.
	BaseURL string

	// Timeout bounds a single request.
	Timeout time.Duration

	// Language hints the transcription language.
	Language string

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client

	// Logger receives client logs.
	Logger *slog.Logger
}

// DefaultConfig returns the default client settings.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Logger:  slog.Default(),
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

// WithBaseURL sets the backend base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLanguage sets the transcription language hint.
func WithLanguage(lang string) Option {
	return func(c *Config) { c.Language = lang }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
