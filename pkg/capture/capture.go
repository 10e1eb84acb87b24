// Package capture owns the microphone lifecycle for one conversation turn.
//
// A Controller buffers everything recorded between Start and Stop into a
// single Clip, which the turn pipeline hands to the transcription
// collaborator. Only one recording may be active at a time, and the
// underlying device is released on every exit path, including failed
// starts.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/falalabs/go-fala/pkg/audioio"
)

// Common errors returned by the capture controller.
var (
	// ErrDeviceUnavailable indicates the input device could not be acquired.
	ErrDeviceUnavailable = errors.New("capture: input device unavailable")

	// ErrAlreadyRecording indicates Start was called while recording.
	ErrAlreadyRecording = errors.New("capture: already recording")
)

// Clip is one finalized recording: the opaque audio artifact a turn
// submits for transcription.
type Clip struct {
	// PCM contains little-endian PCM16 audio bytes.
	PCM []byte

	// SampleRate is the clip's sample rate in Hz.
	SampleRate int

	// Channels is the number of audio channels.
	Channels int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.PCM)/2) / float64(c.SampleRate*c.Channels)
}

// Empty reports whether the clip contains no audio.
func (c *Clip) Empty() bool {
	return len(c.PCM) == 0
}

// Controller records microphone audio into a single buffer per turn.
type Controller struct {
	source audioio.Source
	logger *slog.Logger

	mu        sync.Mutex
	recording bool
	buf       []byte
	done      chan struct{}
}

// New creates a capture controller on top of the given audio source.
func New(source audioio.Source, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		source: source,
		logger: logger.With("component", "capture"),
	}
}

// Start acquires the microphone and begins buffering audio.
// Returns ErrAlreadyRecording if a recording is active, or
// ErrDeviceUnavailable if the device cannot be acquired; in both cases
// the controller state is unchanged.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recording {
		return ErrAlreadyRecording
	}

	if err := c.source.Start(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	c.recording = true
	c.buf = c.buf[:0]
	c.done = make(chan struct{})

	go c.accumulate(c.done)

	c.logger.Info("recording started",
		"device", c.source.Name(),
		"sample_rate", c.source.Config().SampleRate,
	)

	return nil
}

// accumulate drains the source stream into the turn buffer until the
// stream closes.
func (c *Controller) accumulate(done chan struct{}) {
	defer close(done)

	for chunk := range c.source.Stream() {
		data := chunk.Bytes()
		c.mu.Lock()
		c.buf = append(c.buf, data...)
		c.mu.Unlock()
	}
}

// Stop finalizes the buffered audio into a Clip and releases the device.
// Calling Stop while not recording is a no-op and returns an empty clip.
func (c *Controller) Stop() (*Clip, error) {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return &Clip{}, nil
	}
	cfg := c.source.Config()
	done := c.done
	c.mu.Unlock()

	// Stopping the source closes its stream, which ends the accumulate
	// goroutine. The device is released even if Stop errors.
	stopErr := c.source.Stop()
	<-done

	c.mu.Lock()
	defer c.mu.Unlock()

	c.recording = false
	clip := &Clip{
		PCM:        append([]byte(nil), c.buf...),
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	}
	c.buf = c.buf[:0]

	if stopErr != nil {
		return clip, fmt.Errorf("capture: stop device: %w", stopErr)
	}

	c.logger.Info("recording stopped",
		"bytes", len(clip.PCM),
		"duration_s", clip.Duration(),
	)

	return clip, nil
}

// Recording reports whether a recording is currently active.
func (c *Controller) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Close stops any active recording and releases the source.
func (c *Controller) Close() error {
	if _, err := c.Stop(); err != nil {
		return err
	}
	return c.source.Close()
}
