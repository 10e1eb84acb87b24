package playback

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/falalabs/go-fala/pkg/audioio"
	"github.com/falalabs/go-fala/pkg/capture"
)

func testClip(seconds float64) *capture.Clip {
	n := int(seconds * 16000 * 2)
	return &capture.Clip{
		PCM:        make([]byte, n),
		SampleRate: 16000,
		Channels:   1,
	}
}

func testSink() *audioio.MockSink {
	cfg := audioio.DefaultConfig()
	cfg.Backend = audioio.BackendMock
	return audioio.NewMockSink(cfg, nil)
}

func TestPlayAndComplete(t *testing.T) {
	sink := testSink()
	p := New(sink, nil)

	var started, ended atomic.Bool
	p.OnPlaybackStart = func() { started.Store(true) }
	p.OnPlaybackEnd = func(err error) {
		if err != nil {
			t.Errorf("unexpected playback error: %v", err)
		}
		ended.Store(true)
	}

	if err := p.Play(context.Background(), testClip(0.1)); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if !p.Playing() && !ended.Load() {
		t.Error("busy flag should be set while playing")
	}

	p.Wait()

	if p.Playing() {
		t.Error("busy flag should be cleared after completion")
	}
	if !started.Load() {
		t.Error("start callback not invoked")
	}
	if !ended.Load() {
		t.Error("end callback not invoked")
	}
	if sink.ChunksWritten() == 0 {
		t.Error("no audio reached the sink")
	}
}

func TestPlayWhileBusy(t *testing.T) {
	sink := testSink()
	p := New(sink, nil)

	if err := p.Play(context.Background(), testClip(1.0)); err != nil {
		t.Fatalf("first play failed: %v", err)
	}

	err := p.Play(context.Background(), testClip(0.1))
	if !errors.Is(err, ErrPlaybackBusy) {
		t.Errorf("expected ErrPlaybackBusy, got %v", err)
	}

	// The original playback must be unaffected and still complete.
	p.Wait()
	if p.Playing() {
		t.Error("busy flag should be cleared after original playback")
	}
}

func TestBusyResetOnError(t *testing.T) {
	sink := testSink()
	sink.FailWrites(io.ErrClosedPipe)
	p := New(sink, nil)

	var playbackErr error
	doneCh := make(chan struct{})
	p.OnPlaybackEnd = func(err error) {
		playbackErr = err
		close(doneCh)
	}

	if err := p.Play(context.Background(), testClip(0.1)); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("playback did not finish")
	}

	if playbackErr == nil {
		t.Error("expected a playback error")
	}
	if p.Playing() {
		t.Error("busy flag must be reset even on error")
	}

	// Player must accept new playbacks after a failure.
	sink.FailWrites(nil)
	p.OnPlaybackEnd = nil
	if err := p.Play(context.Background(), testClip(0.05)); err != nil {
		t.Errorf("play after failure should succeed, got %v", err)
	}
	p.Wait()
}

func TestPlayEmptyClip(t *testing.T) {
	p := New(testSink(), nil)

	if err := p.Play(context.Background(), &capture.Clip{}); err != nil {
		t.Errorf("empty clip should be a no-op, got %v", err)
	}
	if err := p.Play(context.Background(), nil); err != nil {
		t.Errorf("nil clip should be a no-op, got %v", err)
	}
	if p.Playing() {
		t.Error("no playback should be active")
	}
}

func TestStopIdle(t *testing.T) {
	p := New(testSink(), nil)
	p.Stop() // must not panic or block
	if p.Playing() {
		t.Error("player should be idle")
	}
}
