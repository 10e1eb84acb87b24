package tutor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/falalabs/go-fala/pkg/backend"
)

// History growth bounds. When the cap is hit the oldest turns are
// dropped down to the trim size, matching the backend's own limit.
const (
	historyCap    = 50
	historyTrimTo = 30
)

// Turn is one user utterance and the resulting assistant reply.
// A turn with an empty AssistantText is still awaiting its reply.
type Turn struct {
	// ID uniquely identifies the turn and correlates streamed replies.
	ID string

	// UserText is what the learner said or typed.
	UserText string

	// AssistantText is the tutor's reply. Empty until the reply arrives.
	AssistantText string

	// CreatedAt is when the user action was finalized.
	CreatedAt time.Time

	// LatencySeconds is the reply generation time. Zero until complete.
	LatencySeconds float64

	// Model is the model that produced the reply. Empty until complete.
	Model string
}

// Completed reports whether the assistant reply has arrived.
func (t *Turn) Completed() bool {
	return t.AssistantText != ""
}

func newTurn(userText string) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		UserText:  userText,
		CreatedAt: time.Now(),
	}
}

// History is the ordered conversation transcript. Turns appear in the
// order their triggering user action was finalized, regardless of when
// replies arrive. It is goroutine-safe.
type History struct {
	mu    sync.Mutex
	turns []*Turn
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// append adds a turn and enforces the growth bounds.
func (h *History) append(t *Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, t)
	if len(h.turns) > historyCap {
		trimmed := make([]*Turn, historyTrimTo)
		copy(trimmed, h.turns[len(h.turns)-historyTrimTo:])
		h.turns = trimmed
	}
}

// remove backs out a turn whose dispatch failed.
func (h *History) remove(t *Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, cur := range h.turns {
		if cur == t {
			h.turns = append(h.turns[:i], h.turns[i+1:]...)
			return
		}
	}
}

// Turns returns a copy of the transcript, oldest first.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	for i, t := range h.turns {
		out[i] = *t
	}
	return out
}

// Len returns the number of turns, including any awaiting a reply.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Reset clears the transcript.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

// Context returns up to limit of the most recent completed turns as
// generation context, oldest first. Turns still awaiting their reply
// are excluded.
func (h *History) Context(limit int) []backend.ContextTurn {
	h.mu.Lock()
	defer h.mu.Unlock()

	var completed []*Turn
	for _, t := range h.turns {
		if t.Completed() {
			completed = append(completed, t)
		}
	}
	if limit > 0 && len(completed) > limit {
		completed = completed[len(completed)-limit:]
	}

	out := make([]backend.ContextTurn, len(completed))
	for i, t := range completed {
		out[i] = backend.ContextTurn{User: t.UserText, Assistant: t.AssistantText}
	}
	return out
}
