package audioio

import (
	"context"
	"io"
)

// Sink plays audio to a speaker or other output device.
type Sink interface {
	// Start begins audio playback.
	// After calling Start, audio can be written via Write.
	Start(ctx context.Context) error

	// Stop halts audio playback.
	// It is safe to call Stop multiple times.
	Stop() error

	// Write sends an audio chunk to the output device.
	// This may block if the output buffer is full.
	Write(ctx context.Context, chunk AudioChunk) error

	// Flush waits for all buffered audio to be played.
	Flush(ctx context.Context) error

	// Clear discards all buffered audio immediately.
	// Use this to interrupt playback.
	Clear() error

	// Config returns the current audio configuration.
	Config() Config

	// Name returns the backend name (e.g., "alsa", "coreaudio", "mock").
	Name() string

	// Close releases all resources.
	// After Close, the sink cannot be restarted.
	io.Closer
}
