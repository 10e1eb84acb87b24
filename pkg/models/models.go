// Package models holds the selectable model catalog and the selection
// policy that picks which backend model serves the next turn.
package models

import (
	"errors"
	"fmt"
)

// ErrNoModelAvailable indicates no model passed the availability filter.
// Callers must surface this rather than silently picking a model.
var ErrNoModelAvailable = errors.New("models: no model available")

// Info describes one selectable backend model.
// The catalog is supplied by the model backend; the orchestrator only
// ever mutates the observed-performance fields.
type Info struct {
	// ID is the backend model identifier (e.g. "gemma2:2b").
	ID string `json:"id"`

	// Size is the on-disk size for display (e.g. "1.6GB").
	Size string `json:"size,omitempty"`

	// Cost is the ordinal resource cost class (lower = cheaper).
	Cost int `json:"cost"`

	// SpeedRating rates generation speed, 1-5 where 5 is fastest.
	SpeedRating int `json:"speed_rating"`

	// QualityRating rates conversation quality, 1-5 where 5 is best.
	QualityRating int `json:"quality_rating"`

	// ContextWindow is the model's context length in tokens.
	ContextWindow int `json:"context_window,omitempty"`

	// Available reports whether the backend can serve this model now.
	Available bool `json:"available"`

	// ObservedLatency is the recently observed reply latency in seconds.
	// Zero when the model has not served a turn yet.
	ObservedLatency float64 `json:"observed_latency,omitempty"`

	// ObservedTokensPerSec is the recently observed throughput.
	// Zero when unknown.
	ObservedTokensPerSec float64 `json:"observed_tokens_per_sec,omitempty"`
}

// Mode is the user-selected conversation optimization target.
type Mode string

const (
	// ModeSpeed favors the fastest model.
	ModeSpeed Mode = "speed"
	// ModeBalanced favors the best combined speed+quality.
	ModeBalanced Mode = "balanced"
	// ModeQuality favors the highest-quality model.
	ModeQuality Mode = "quality"
)

// ParseMode parses a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSpeed, ModeBalanced, ModeQuality:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("models: unknown mode %q", s)
	}
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Preset carries the per-mode generation settings.
type Preset struct {
	// MaxTokens caps the reply length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// AutoSwitch enables per-turn automatic model selection.
	AutoSwitch bool

	// ContextLimit is the number of recent turns sent to the model.
	ContextLimit int
}

// presets mirrors the backend's per-mode conversation settings.
var presets = map[Mode]Preset{
	ModeSpeed:    {MaxTokens: 50, Temperature: 0.7, AutoSwitch: true, ContextLimit: 5},
	ModeBalanced: {MaxTokens: 100, Temperature: 0.8, AutoSwitch: true, ContextLimit: 10},
	ModeQuality:  {MaxTokens: 200, Temperature: 0.9, AutoSwitch: false, ContextLimit: 20},
}

// Preset returns the generation settings for this mode.
func (m Mode) Preset() Preset {
	if p, ok := presets[m]; ok {
		return p
	}
	return presets[ModeBalanced]
}
