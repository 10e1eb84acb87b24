// Package audioio provides audio capture and playback device abstractions.
//
// The capture and playback controllers are written against the Source and
// Sink interfaces, never against a concrete device. This keeps the
// orchestration logic testable without hardware: the mock implementations
// in this package simulate real device behavior including exclusive
// acquisition and buffer timing.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendMock uses a mock implementation for testing and headless use.
	BackendMock Backend = "mock"
)

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto"
	Backend Backend `json:"backend"`

	// SampleRate is the audio sample rate in Hz.
	// Default: 16000 (what the transcription collaborator expects)
	SampleRate int `json:"sample_rate"`

	// Channels is the number of audio channels.
	// Default: 1 (mono)
	Channels int `json:"channels"`

	// BufferDuration is the size of audio buffers.
	// Default: 20ms (320 samples at 16kHz)
	BufferDuration time.Duration `json:"buffer_duration"`

	// Device is the platform-specific device identifier.
	// Empty selects the system default.
	Device string `json:"device"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     16000,
		Channels:       1,
		BufferDuration: 20 * time.Millisecond,
		Device:         "",
	}
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the number of samples per buffer.
func (c Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}

// BufferBytes returns the size of a buffer in bytes (assuming int16 samples).
func (c Config) BufferBytes() int {
	return c.BufferSize() * c.Channels * 2 // 2 bytes per int16 sample
}
