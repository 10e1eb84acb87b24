// Package playback owns the audio output lifecycle.
//
// A Player plays one synthesized utterance at a time. A second Play
// while busy is rejected with ErrPlaybackBusy rather than queued; the
// busy flag is reset on every exit path so a failed playback can never
// wedge the speaker.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/falalabs/go-fala/pkg/audioio"
	"github.com/falalabs/go-fala/pkg/capture"
)

// ErrPlaybackBusy indicates Play was called while another playback is
// in progress.
var ErrPlaybackBusy = errors.New("playback: busy")

// Player plays synthesized audio clips through an audioio.Sink.
type Player struct {
	sink   audioio.Sink
	logger *slog.Logger

	mu      sync.Mutex
	playing bool
	done    chan struct{}

	// Callbacks
	OnPlaybackStart func()
	OnPlaybackEnd   func(err error)
}

// New creates a player on top of the given audio sink.
func New(sink audioio.Sink, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		sink:   sink,
		logger: logger.With("component", "playback"),
	}
}

// Play begins playing the clip and returns immediately.
// Returns ErrPlaybackBusy if another playback is in progress; the
// original playback is unaffected in that case.
func (p *Player) Play(ctx context.Context, clip *capture.Clip) error {
	if clip == nil || clip.Empty() {
		return nil
	}

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrPlaybackBusy
	}
	p.playing = true
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	if p.OnPlaybackStart != nil {
		p.OnPlaybackStart()
	}

	go p.run(ctx, clip, done)

	return nil
}

// run streams the clip to the sink. The busy flag is cleared
// unconditionally when it returns.
func (p *Player) run(ctx context.Context, clip *capture.Clip, done chan struct{}) {
	var err error

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		close(done)

		if p.OnPlaybackEnd != nil {
			p.OnPlaybackEnd(err)
		}
	}()

	if err = p.sink.Start(ctx); err != nil {
		err = fmt.Errorf("playback: start sink: %w", err)
		p.logger.Error("playback failed", "error", err)
		return
	}
	defer p.sink.Stop()

	chunkBytes := p.sink.Config().BufferBytes()
	if chunkBytes <= 0 {
		chunkBytes = len(clip.PCM)
	}

	for off := 0; off < len(clip.PCM); off += chunkBytes {
		end := off + chunkBytes
		if end > len(clip.PCM) {
			end = len(clip.PCM)
		}

		var chunk audioio.AudioChunk
		chunk.FromBytes(clip.PCM[off:end], clip.SampleRate, clip.Channels)

		if err = p.sink.Write(ctx, chunk); err != nil {
			err = fmt.Errorf("playback: write: %w", err)
			p.logger.Error("playback failed", "error", err)
			return
		}
	}

	if err = p.sink.Flush(ctx); err != nil {
		err = fmt.Errorf("playback: flush: %w", err)
		p.logger.Error("playback failed", "error", err)
		return
	}

	p.logger.Debug("playback complete", "duration_s", clip.Duration())
}

// Stop halts any current playback immediately and discards buffered
// audio. Safe to call while idle.
func (p *Player) Stop() {
	p.mu.Lock()
	playing := p.playing
	done := p.done
	p.mu.Unlock()

	_ = p.sink.Clear()
	_ = p.sink.Stop()

	if playing {
		<-done
	}
}

// Playing reports whether a playback is currently in progress.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Wait blocks until the current playback finishes. Returns immediately
// if nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	playing := p.playing
	done := p.done
	p.mu.Unlock()

	if playing {
		<-done
	}
}

// Close stops playback and releases the sink.
func (p *Player) Close() error {
	p.Stop()
	return p.sink.Close()
}
