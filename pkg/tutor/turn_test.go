package tutor

import (
	"fmt"
	"testing"
)

func completedTurn(i int) *Turn {
	t := newTurn(fmt.Sprintf("question %d", i))
	t.AssistantText = fmt.Sprintf("answer %d", i)
	return t
}

func TestHistoryTrim(t *testing.T) {
	h := NewHistory()
	for i := 0; i < historyCap+1; i++ {
		h.append(completedTurn(i))
	}

	if h.Len() != historyTrimTo {
		t.Fatalf("length after trim = %d, want %d", h.Len(), historyTrimTo)
	}

	// The most recent turns survive.
	turns := h.Turns()
	if turns[len(turns)-1].UserText != fmt.Sprintf("question %d", historyCap) {
		t.Errorf("newest turn = %q", turns[len(turns)-1].UserText)
	}
	if turns[0].UserText != fmt.Sprintf("question %d", historyCap+1-historyTrimTo) {
		t.Errorf("oldest surviving turn = %q", turns[0].UserText)
	}
}

func TestContextLimit(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 8; i++ {
		h.append(completedTurn(i))
	}

	ctx := h.Context(5)
	if len(ctx) != 5 {
		t.Fatalf("context length = %d, want 5", len(ctx))
	}
	if ctx[0].User != "question 3" {
		t.Errorf("context starts at %q, want question 3", ctx[0].User)
	}
	if ctx[4].Assistant != "answer 7" {
		t.Errorf("context ends at %q, want answer 7", ctx[4].Assistant)
	}
}

func TestContextExcludesPendingTurn(t *testing.T) {
	h := NewHistory()
	h.append(completedTurn(0))
	h.append(newTurn("still waiting"))

	ctx := h.Context(10)
	if len(ctx) != 1 {
		t.Fatalf("context length = %d, want 1", len(ctx))
	}
	if ctx[0].User != "question 0" {
		t.Errorf("context user = %q", ctx[0].User)
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.append(completedTurn(0))
	h.Reset()
	if h.Len() != 0 {
		t.Errorf("length after reset = %d, want 0", h.Len())
	}
}

func TestHistoryRemove(t *testing.T) {
	h := NewHistory()
	a := completedTurn(0)
	b := newTurn("pending")
	h.append(a)
	h.append(b)

	h.remove(b)
	if h.Len() != 1 {
		t.Fatalf("length = %d, want 1", h.Len())
	}
	if h.Turns()[0].UserText != "question 0" {
		t.Errorf("wrong turn removed")
	}
}
