package models

import (
	"fmt"
	"sort"
	"sync"
)

// Selector implements the model selection policy.
//
// A manual pin always wins over the policy. When the pinned model is
// not available the selector reports ErrNoModelAvailable rather than
// silently falling back to another model.
type Selector struct {
	mu   sync.Mutex
	mode Mode
	pin  string
}

// NewSelector creates a selector in the given mode.
func NewSelector(mode Mode) *Selector {
	return &Selector{mode: mode}
}

// SetMode switches the optimization mode.
func (s *Selector) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Mode returns the current optimization mode.
func (s *Selector) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Pin forces all subsequent selections to the given model id.
func (s *Selector) Pin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = id
}

// Unpin returns the selector to automatic selection.
func (s *Selector) Unpin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = ""
}

// Pinned returns the pinned model id, or "" when selection is automatic.
func (s *Selector) Pinned() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin
}

// Select picks the model for the next turn out of the catalog.
//
// Unavailable models are never selected. With a pin in place the pinned
// model is returned if available, otherwise ErrNoModelAvailable. Without
// a pin the candidates are ranked by the mode's rating, ties broken by
// observed throughput, then by resource cost class.
func (s *Selector) Select(catalog []Info) (Info, error) {
	s.mu.Lock()
	mode := s.mode
	pin := s.pin
	s.mu.Unlock()

	if pin != "" {
		for _, m := range catalog {
			if m.ID == pin {
				if !m.Available {
					return Info{}, fmt.Errorf("%w: pinned model %q is unavailable", ErrNoModelAvailable, pin)
				}
				return m, nil
			}
		}
		return Info{}, fmt.Errorf("%w: pinned model %q not in catalog", ErrNoModelAvailable, pin)
	}

	candidates := make([]Info, 0, len(catalog))
	for _, m := range catalog {
		if m.Available {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return Info{}, ErrNoModelAvailable
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if as, bs := score(a, mode), score(b, mode); as != bs {
			return as > bs
		}
		if a.ObservedTokensPerSec != b.ObservedTokensPerSec {
			return a.ObservedTokensPerSec > b.ObservedTokensPerSec
		}
		return a.Cost < b.Cost
	})

	return candidates[0], nil
}

// score ranks a model under the given mode.
func score(m Info, mode Mode) int {
	switch mode {
	case ModeSpeed:
		return m.SpeedRating
	case ModeQuality:
		return m.QualityRating
	default:
		return m.SpeedRating + m.QualityRating
	}
}
