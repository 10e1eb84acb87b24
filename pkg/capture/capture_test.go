package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/falalabs/go-fala/pkg/audioio"
)

func testConfig() audioio.Config {
	cfg := audioio.DefaultConfig()
	cfg.Backend = audioio.BackendMock
	cfg.BufferDuration = 5 * time.Millisecond
	return cfg
}

func TestStartStop(t *testing.T) {
	src := audioio.NewMockSource(testConfig(), nil, audioio.WithSineWave(440, 0.5))
	c := New(src, nil)

	if c.Recording() {
		t.Error("should not be recording initially")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if !c.Recording() {
		t.Error("should be recording after Start")
	}
	if !src.Running() {
		t.Error("device should be held while recording")
	}

	// Let some audio accumulate
	time.Sleep(30 * time.Millisecond)

	clip, err := c.Stop()
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if c.Recording() {
		t.Error("should not be recording after Stop")
	}
	if src.Running() {
		t.Error("device should be released after Stop")
	}
	if clip.Empty() {
		t.Error("clip should contain buffered audio")
	}
	if clip.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", clip.SampleRate)
	}
}

func TestStartWhileRecording(t *testing.T) {
	src := audioio.NewMockSource(testConfig(), nil)
	c := New(src, nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer c.Stop()

	if err := c.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}

	if !c.Recording() {
		t.Error("original recording should be unaffected")
	}
}

func TestStartDeviceUnavailable(t *testing.T) {
	src := audioio.NewMockSource(testConfig(), nil,
		audioio.WithStartError(audioio.ErrDeviceBusy))
	c := New(src, nil)

	err := c.Start(context.Background())
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}

	if c.Recording() {
		t.Error("state should be unchanged after failed Start")
	}
	if src.Running() {
		t.Error("device should not be held after failed Start")
	}
}

func TestStopWhileNotRecording(t *testing.T) {
	src := audioio.NewMockSource(testConfig(), nil)
	c := New(src, nil)

	clip, err := c.Stop()
	if err != nil {
		t.Fatalf("stop on idle controller should be a no-op, got %v", err)
	}
	if !clip.Empty() {
		t.Error("idle stop should return an empty clip")
	}
}

func TestRepeatedCycles(t *testing.T) {
	src := audioio.NewMockSource(testConfig(), nil, audioio.WithSineWave(220, 0.3))
	c := New(src, nil)

	for i := 0; i < 3; i++ {
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("cycle %d: start failed: %v", i, err)
		}
		time.Sleep(15 * time.Millisecond)
		if _, err := c.Stop(); err != nil {
			t.Fatalf("cycle %d: stop failed: %v", i, err)
		}
		if src.Running() {
			t.Fatalf("cycle %d: device leaked", i)
		}
	}
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{
		PCM:        make([]byte, 32000), // 16000 samples
		SampleRate: 16000,
		Channels:   1,
	}
	if d := clip.Duration(); d != 1.0 {
		t.Errorf("duration = %v, want 1.0", d)
	}

	empty := &Clip{}
	if d := empty.Duration(); d != 0 {
		t.Errorf("empty clip duration = %v, want 0", d)
	}
}
