package models

import (
	"errors"
	"testing"
)

func testCatalog() []Info {
	return []Info{
		{ID: "tiny", Cost: 1, SpeedRating: 5, QualityRating: 2, Available: true},
		{ID: "mid", Cost: 2, SpeedRating: 3, QualityRating: 4, Available: true},
		{ID: "big", Cost: 4, SpeedRating: 2, QualityRating: 5, Available: true},
	}
}

func TestSelectByMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeSpeed, "tiny"},
		{ModeQuality, "big"},
		{ModeBalanced, "tiny"}, // 7 vs 7 vs 7: equal throughput, lowest cost wins
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := NewSelector(tt.mode)
			got, err := s.Select(testCatalog())
			if err != nil {
				t.Fatalf("select failed: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("selected %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestBalancedTieBreaks(t *testing.T) {
	// Both models score 7 in balanced mode.
	a := Info{ID: "a", Cost: 3, SpeedRating: 5, QualityRating: 2, Available: true}
	b := Info{ID: "b", Cost: 3, SpeedRating: 2, QualityRating: 5, Available: true}

	s := NewSelector(ModeBalanced)

	// Observed throughput decides first.
	a.ObservedTokensPerSec = 18
	b.ObservedTokensPerSec = 25
	got, err := s.Select([]Info{a, b})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got.ID != "b" {
		t.Errorf("throughput tie-break picked %q, want b", got.ID)
	}

	// With equal throughput the cheaper model wins.
	a.ObservedTokensPerSec = 20
	b.ObservedTokensPerSec = 20
	b.Cost = 4
	got, err = s.Select([]Info{a, b})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("cost tie-break picked %q, want a", got.ID)
	}
}

func TestSelectSkipsUnavailable(t *testing.T) {
	catalog := testCatalog()
	catalog[0].Available = false // tiny would win speed mode

	s := NewSelector(ModeSpeed)
	got, err := s.Select(catalog)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got.ID != "mid" {
		t.Errorf("selected %q, want mid", got.ID)
	}
}

func TestSelectNoneAvailable(t *testing.T) {
	catalog := testCatalog()
	for i := range catalog {
		catalog[i].Available = false
	}

	s := NewSelector(ModeBalanced)
	if _, err := s.Select(catalog); !errors.Is(err, ErrNoModelAvailable) {
		t.Errorf("expected ErrNoModelAvailable, got %v", err)
	}
}

func TestPinnedModel(t *testing.T) {
	s := NewSelector(ModeSpeed)
	s.Pin("big")

	got, err := s.Select(testCatalog())
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got.ID != "big" {
		t.Errorf("pinned selection = %q, want big", got.ID)
	}

	s.Unpin()
	got, err = s.Select(testCatalog())
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got.ID != "tiny" {
		t.Errorf("after unpin selected %q, want tiny", got.ID)
	}
}

func TestPinnedUnavailable(t *testing.T) {
	catalog := testCatalog()
	catalog[2].Available = false

	s := NewSelector(ModeSpeed)
	s.Pin("big")

	// No silent fallback: the caller must see the failure.
	if _, err := s.Select(catalog); !errors.Is(err, ErrNoModelAvailable) {
		t.Errorf("expected ErrNoModelAvailable, got %v", err)
	}

	s.Pin("missing")
	if _, err := s.Select(catalog); !errors.Is(err, ErrNoModelAvailable) {
		t.Errorf("expected ErrNoModelAvailable for unknown pin, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"speed", "balanced", "quality"} {
		if _, err := ParseMode(valid); err != nil {
			t.Errorf("ParseMode(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseMode("turbo"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestModePresets(t *testing.T) {
	if p := ModeQuality.Preset(); p.AutoSwitch {
		t.Error("quality mode must not auto-switch models")
	}
	if p := ModeSpeed.Preset(); p.ContextLimit != 5 {
		t.Errorf("speed context limit = %d, want 5", p.ContextLimit)
	}
	if p := ModeBalanced.Preset(); p.MaxTokens != 100 {
		t.Errorf("balanced max tokens = %d, want 100", p.MaxTokens)
	}
}
