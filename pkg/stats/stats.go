// Package stats maintains rolling conversation statistics.
//
// The aggregator is pure bookkeeping: it is updated exactly once per
// completed turn, never blocks, and never fails. The model selection
// policy consumes its per-model observed performance; the UI consumes
// the rolling averages.
package stats

import (
	"sync"
)

// Snapshot is a point-in-time copy of the rolling stats.
type Snapshot struct {
	// Turns is the number of completed turns.
	Turns int

	// AvgLatencySeconds is the running average reply latency.
	AvgLatencySeconds float64

	// LastModel is the model that served the most recent turn.
	LastModel string
}

// ModelPerformance is the observed performance of one model.
type ModelPerformance struct {
	// AvgLatencySeconds is the running average latency for this model.
	AvgLatencySeconds float64

	// TokensPerSecond is the most recently observed throughput.
	TokensPerSecond float64

	// Turns is the number of turns this model served.
	Turns int
}

// Aggregator accumulates rolling statistics over completed turns.
// It is goroutine-safe.
type Aggregator struct {
	mu sync.Mutex

	turns     int
	avg       float64
	lastModel string

	perModel map[string]ModelPerformance

	// onUpdate fires after every recorded turn.
	onUpdate func(Snapshot)
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		perModel: make(map[string]ModelPerformance),
	}
}

// OnUpdate sets a callback that fires whenever a turn is recorded.
func (a *Aggregator) OnUpdate(fn func(Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onUpdate = fn
}

// Record updates the rolling stats with one completed turn.
// The average uses an exact incremental mean, so no turn history is
// retained: avg' = (avg*n + latency) / (n+1).
func (a *Aggregator) Record(model string, latencySeconds, tokensPerSecond float64) {
	a.mu.Lock()

	a.avg = (a.avg*float64(a.turns) + latencySeconds) / float64(a.turns+1)
	a.turns++
	a.lastModel = model

	mp := a.perModel[model]
	mp.AvgLatencySeconds = (mp.AvgLatencySeconds*float64(mp.Turns) + latencySeconds) / float64(mp.Turns+1)
	mp.Turns++
	if tokensPerSecond > 0 {
		mp.TokensPerSecond = tokensPerSecond
	}
	a.perModel[model] = mp

	snap := a.snapshotLocked()
	fn := a.onUpdate
	a.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Current returns a snapshot of the rolling stats.
func (a *Aggregator) Current() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	return Snapshot{
		Turns:             a.turns,
		AvgLatencySeconds: a.avg,
		LastModel:         a.lastModel,
	}
}

// Performance returns the observed performance for one model and
// whether any turns were recorded for it.
func (a *Aggregator) Performance(model string) (ModelPerformance, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	mp, ok := a.perModel[model]
	return mp, ok
}

// Reset clears all accumulated statistics.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = 0
	a.avg = 0
	a.lastModel = ""
	a.perModel = make(map[string]ModelPerformance)
}
