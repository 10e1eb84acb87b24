package stats

import (
	"math"
	"sync"
	"testing"
)

func TestIncrementalMeanIsExact(t *testing.T) {
	latencies := []float64{0.8, 1.2, 0.5, 2.0, 0.9, 1.1, 0.7}

	a := NewAggregator()
	sum := 0.0
	for i, l := range latencies {
		a.Record("gemma2:2b", l, 0)
		sum += l

		want := sum / float64(i+1)
		got := a.Current().AvgLatencySeconds
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("after %d turns: avg = %v, want %v", i+1, got, want)
		}
	}

	if a.Current().Turns != len(latencies) {
		t.Errorf("turns = %d, want %d", a.Current().Turns, len(latencies))
	}
}

func TestFirstTurnAverage(t *testing.T) {
	a := NewAggregator()
	a.Record("llama3.2:3b", 0.8, 12.5)

	snap := a.Current()
	if snap.AvgLatencySeconds != 0.8 {
		t.Errorf("avg after first turn = %v, want 0.8", snap.AvgLatencySeconds)
	}
	if snap.LastModel != "llama3.2:3b" {
		t.Errorf("last model = %q", snap.LastModel)
	}
}

func TestPerModelPerformance(t *testing.T) {
	a := NewAggregator()
	a.Record("fast", 0.4, 20)
	a.Record("slow", 2.0, 5)
	a.Record("fast", 0.6, 22)

	mp, ok := a.Performance("fast")
	if !ok {
		t.Fatal("expected performance for fast model")
	}
	if mp.Turns != 2 {
		t.Errorf("fast turns = %d, want 2", mp.Turns)
	}
	if math.Abs(mp.AvgLatencySeconds-0.5) > 1e-12 {
		t.Errorf("fast avg = %v, want 0.5", mp.AvgLatencySeconds)
	}
	if mp.TokensPerSecond != 22 {
		t.Errorf("fast tokens/s should hold latest observation, got %v", mp.TokensPerSecond)
	}

	if _, ok := a.Performance("missing"); ok {
		t.Error("unexpected performance for unknown model")
	}
}

func TestOnUpdate(t *testing.T) {
	a := NewAggregator()

	var got Snapshot
	a.OnUpdate(func(s Snapshot) { got = s })

	a.Record("m", 1.5, 0)
	if got.Turns != 1 || got.AvgLatencySeconds != 1.5 {
		t.Errorf("callback snapshot = %+v", got)
	}
}

func TestReset(t *testing.T) {
	a := NewAggregator()
	a.Record("m", 1.0, 10)
	a.Reset()

	snap := a.Current()
	if snap.Turns != 0 || snap.AvgLatencySeconds != 0 || snap.LastModel != "" {
		t.Errorf("snapshot after reset = %+v", snap)
	}
	if _, ok := a.Performance("m"); ok {
		t.Error("per-model stats should be cleared on reset")
	}
}

func TestConcurrentRecord(t *testing.T) {
	a := NewAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Record("m", 1.0, 1.0)
		}()
	}
	wg.Wait()

	snap := a.Current()
	if snap.Turns != 50 {
		t.Errorf("turns = %d, want 50", snap.Turns)
	}
	if math.Abs(snap.AvgLatencySeconds-1.0) > 1e-9 {
		t.Errorf("avg = %v, want 1.0", snap.AvgLatencySeconds)
	}
}
