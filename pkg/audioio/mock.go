package audioio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// ErrDeviceBusy is returned by mock devices configured to simulate a
// device that is held by another process.
var ErrDeviceBusy = errors.New("audioio: device busy")

// MockSource is a mock audio source for testing.
// It generates synthetic audio (silence or sine wave).
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	streamCh chan AudioChunk
	stopCh   chan struct{}

	// Stats
	chunksRead  atomic.Int64
	samplesRead atomic.Int64

	// Synthetic audio generation
	phase     float64
	frequency float64 // Hz, 0 = silence
	amplitude float64 // 0.0 to 1.0

	// Failure injection
	startErr error
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithSineWave configures the mock to generate a sine wave.
func WithSineWave(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.frequency = frequency
		m.amplitude = amplitude
	}
}

// WithStartError makes Start fail with err, simulating a missing or
// permission-denied input device.
func WithStartError(err error) MockSourceOption {
	return func(m *MockSource) {
		m.startErr = err
	}
}

// NewMockSource creates a new mock audio source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockSource{
		cfg:       cfg,
		logger:    logger,
		streamCh:  make(chan AudioChunk, 10),
		stopCh:    make(chan struct{}),
		frequency: 0, // Silence by default
		amplitude: 0.5,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start begins generating audio.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.startErr != nil {
		return m.startErr
	}
	if m.running {
		return nil
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.streamCh = make(chan AudioChunk, 10)

	go m.generateLoop(ctx, m.streamCh, m.stopCh)

	m.logger.Debug("mock audio source started",
		"sample_rate", m.cfg.SampleRate,
		"frequency", m.frequency,
	)

	return nil
}

// generateLoop owns the stream channel: only it sends, and it closes
// the channel on exit so readers observe end-of-stream.
func (m *MockSource) generateLoop(ctx context.Context, out chan AudioChunk, stop <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.BufferDuration)
	defer ticker.Stop()
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-stop:
			return
		case <-ticker.C:
			chunk := m.generateChunk()
			select {
			case out <- chunk:
				m.chunksRead.Add(1)
				m.samplesRead.Add(int64(len(chunk.Samples)))
			default:
				// Buffer full, drop chunk (overrun)
				m.logger.Debug("mock source: buffer full, dropping chunk")
			}
		}
	}
}

func (m *MockSource) generateChunk() AudioChunk {
	bufferSize := m.cfg.BufferSize()
	samples := make([]int16, bufferSize*m.cfg.Channels)

	if m.frequency > 0 {
		for i := 0; i < bufferSize; i++ {
			sample := m.amplitude * math.Sin(2*math.Pi*m.frequency*m.phase/float64(m.cfg.SampleRate))
			sampleInt := int16(sample * 32767)

			for ch := 0; ch < m.cfg.Channels; ch++ {
				samples[i*m.cfg.Channels+ch] = sampleInt
			}

			m.phase++
			if m.phase >= float64(m.cfg.SampleRate) {
				m.phase = 0
			}
		}
	}
	// else: samples are already zero (silence)

	return AudioChunk{
		Samples:    samples,
		SampleRate: m.cfg.SampleRate,
		Channels:   m.cfg.Channels,
	}
}

// Stop halts audio generation.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	m.running = false
	close(m.stopCh)

	m.logger.Debug("mock audio source stopped")

	return nil
}

// Running reports whether the source is currently capturing.
func (m *MockSource) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Read reads the next audio chunk.
func (m *MockSource) Read(ctx context.Context) (AudioChunk, error) {
	select {
	case <-ctx.Done():
		return AudioChunk{}, ctx.Err()
	case chunk, ok := <-m.streamCh:
		if !ok {
			return AudioChunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Stream returns the audio chunk channel.
func (m *MockSource) Stream() <-chan AudioChunk {
	return m.streamCh
}

// Config returns the audio configuration.
func (m *MockSource) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return "mock"
}

// Close releases resources.
func (m *MockSource) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.Stop()
	return nil
}

// Ensure MockSource implements Source.
var _ Source = (*MockSource)(nil)

// MockSink is a mock audio sink for testing.
// It buffers audio data and simulates playback timing on Flush.
type MockSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool

	// Stats
	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64

	// Buffer simulation
	buffer []AudioChunk

	// Failure injection
	writeErr error
}

// NewMockSink creates a new mock audio sink.
func NewMockSink(cfg Config, logger *slog.Logger) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &MockSink{
		cfg:    cfg,
		logger: logger,
		buffer: make([]AudioChunk, 0, 100),
	}
}

// FailWrites makes subsequent Write calls fail with err.
func (m *MockSink) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Start begins accepting audio.
func (m *MockSink) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}

	m.running = true
	m.logger.Debug("mock audio sink started")

	return nil
}

// Stop halts audio acceptance.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.logger.Debug("mock audio sink stopped")

	return nil
}

// Write accepts an audio chunk.
func (m *MockSink) Write(ctx context.Context, chunk AudioChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || !m.running {
		return io.ErrClosedPipe
	}
	if m.writeErr != nil {
		return m.writeErr
	}

	m.buffer = append(m.buffer, chunk)

	m.chunksWritten.Add(1)
	m.samplesWritten.Add(int64(len(chunk.Samples)))

	return nil
}

// Flush simulates waiting for playback.
func (m *MockSink) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	totalSamples := 0
	for _, chunk := range m.buffer {
		totalSamples += len(chunk.Samples)
	}

	if totalSamples > 0 && m.cfg.SampleRate > 0 {
		duration := time.Duration(float64(totalSamples) / float64(m.cfg.SampleRate) * float64(time.Second))
		// Don't actually wait the full duration in mock mode, just a token amount
		waitTime := duration / 100
		if waitTime > 10*time.Millisecond {
			waitTime = 10 * time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	m.buffer = m.buffer[:0]
	return nil
}

// Clear discards buffered audio.
func (m *MockSink) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer = m.buffer[:0]
	m.logger.Debug("mock audio sink cleared")

	return nil
}

// ChunksWritten returns the number of chunks accepted so far.
func (m *MockSink) ChunksWritten() int64 {
	return m.chunksWritten.Load()
}

// SamplesWritten returns the number of samples accepted so far.
func (m *MockSink) SamplesWritten() int64 {
	return m.samplesWritten.Load()
}

// Config returns the audio configuration.
func (m *MockSink) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSink) Name() string {
	return "mock"
}

// Close releases resources.
func (m *MockSink) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.Stop()
	return nil
}

// Ensure MockSink implements Sink.
var _ Sink = (*MockSink)(nil)
