// Package tutor implements the turn pipeline at the center of the
// conversation client.
//
// A Pipeline turns one triggering input, a recorded clip or typed text,
// into exactly one committed conversation turn: transcription when the
// input is audio, model dispatch, reply completion, stats update, model
// policy, and finally best-effort speech synthesis and playback.
//
// Dispatch is either a direct backend call or, in streaming mode, a
// chat message over the persistent channel. Streaming correlation
// relies on at most one turn being outstanding at a time; a new turn is
// rejected with ErrTurnInFlight until the previous reply resolves.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/falalabs/go-fala/pkg/backend"
	"github.com/falalabs/go-fala/pkg/capture"
	"github.com/falalabs/go-fala/pkg/models"
	"github.com/falalabs/go-fala/pkg/protocol"
	"github.com/falalabs/go-fala/pkg/stats"
)

// Sentinel errors for pipeline conditions.
var (
	// ErrTurnInFlight is returned when a turn is dispatched while a
	// previous one is still awaiting its reply.
	ErrTurnInFlight = errors.New("tutor: turn already in flight")

	// ErrEmptyInput is returned for blank typed input.
	ErrEmptyInput = errors.New("tutor: empty input")
)

// Channel is the slice of the persistent channel the pipeline uses.
// *channel.Manager satisfies it; tests inject synthetic messages.
type Channel interface {
	Send(msg *protocol.Message) error
	OnMessage(fn func(*protocol.Message))
}

// Pipeline coordinates one conversation turn at a time.
type Pipeline struct {
	svc      backend.Service
	config   *Config
	selector *models.Selector
	history  *History
	stats    *stats.Aggregator
	logger   *slog.Logger

	mu           sync.Mutex
	outstanding  *Turn
	catalog      []models.Info
	currentModel string

	onTurnComplete func(Turn)
	onTurnError    func(turnID string, err error)
}

// NewPipeline creates a pipeline over the given backend.
func NewPipeline(svc backend.Service, opts ...Option) *Pipeline {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	p := &Pipeline{
		svc:      svc,
		config:   cfg,
		selector: models.NewSelector(cfg.Mode),
		history:  NewHistory(),
		stats:    stats.NewAggregator(),
		logger:   cfg.Logger.With("component", "tutor"),
	}

	if cfg.Channel != nil {
		cfg.Channel.OnMessage(p.handleMessage)
	}

	return p
}

// OnTurnComplete sets a callback that fires when a turn's reply lands.
func (p *Pipeline) OnTurnComplete(fn func(Turn)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTurnComplete = fn
}

// OnTurnError sets a callback for turns that fail after dispatch.
func (p *Pipeline) OnTurnError(fn func(turnID string, err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTurnError = fn
}

// History returns the conversation transcript.
func (p *Pipeline) History() *History {
	return p.history
}

// Stats returns the rolling statistics aggregator.
func (p *Pipeline) Stats() *stats.Aggregator {
	return p.stats
}

// Mode returns the current conversation mode.
func (p *Pipeline) Mode() models.Mode {
	return p.selector.Mode()
}

// SetMode switches the conversation mode for subsequent turns.
func (p *Pipeline) SetMode(m models.Mode) {
	p.selector.SetMode(m)
	p.logger.Info("mode changed", "mode", m.String())
}

// CurrentModel returns the model serving the next turn.
func (p *Pipeline) CurrentModel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentModel
}

// Outstanding reports whether a dispatched turn is awaiting its reply.
func (p *Pipeline) Outstanding() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding != nil
}

// Reset clears the transcript. Rolling stats are kept; they describe
// model performance, not the conversation.
func (p *Pipeline) Reset() {
	p.history.Reset()
	p.logger.Info("conversation reset")
}

// RefreshCatalog fetches the model catalog from the backend.
func (p *Pipeline) RefreshCatalog(ctx context.Context) error {
	resp, err := p.svc.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("tutor: refresh catalog: %w", err)
	}

	p.mu.Lock()
	p.catalog = resp.Models
	if resp.Current != "" {
		p.currentModel = resp.Current
	}
	p.mu.Unlock()

	p.logger.Debug("catalog refreshed", "models", len(resp.Models), "current", resp.Current)
	return nil
}

// PinModel switches the backend to the given model and disables
// automatic selection until Unpin.
func (p *Pipeline) PinModel(ctx context.Context, id string) error {
	if err := p.svc.SwitchModel(ctx, id); err != nil {
		return err
	}

	p.selector.Pin(id)
	p.mu.Lock()
	p.currentModel = id
	p.mu.Unlock()

	p.logger.Info("model pinned", "model", id)
	return nil
}

// Unpin re-enables automatic model selection.
func (p *Pipeline) Unpin() {
	p.selector.Unpin()
	p.logger.Info("model unpinned")
}

// SubmitClip transcribes a recording and runs it as a turn.
// An empty or whitespace transcription aborts without creating a turn.
func (p *Pipeline) SubmitClip(ctx context.Context, clip *capture.Clip) (*Turn, error) {
	resp, err := p.svc.Transcribe(ctx, &backend.TranscribeRequest{
		Audio:    clip.PCM,
		Language: p.config.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty transcription", backend.ErrTranscriptionFailed)
	}

	p.logger.Debug("transcribed clip", "chars", len(text))
	return p.SubmitText(ctx, text)
}

// SubmitText runs one typed or transcribed utterance as a turn.
//
// In direct mode the call blocks until the reply arrives and returns
// the completed turn. In streaming mode it dispatches over the channel
// and returns the pending turn; completion is reported through the
// OnTurnComplete callback.
func (p *Pipeline) SubmitText(ctx context.Context, text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	p.mu.Lock()
	if p.outstanding != nil {
		p.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	turn := newTurn(text)
	p.outstanding = turn
	model := p.currentModel
	p.mu.Unlock()

	// A manual pin owns dispatch until explicitly cleared.
	if pin := p.selector.Pinned(); pin != "" {
		model = pin
	}

	preset := p.Mode().Preset()

	// Context is captured before the new turn is appended, so it only
	// carries completed exchanges.
	genCtx := p.history.Context(preset.ContextLimit)
	p.history.append(turn)

	if p.config.Streaming {
		return p.dispatchStreaming(turn, text, model)
	}
	return p.dispatchDirect(ctx, turn, text, model, preset, genCtx)
}

// dispatchStreaming sends the turn over the persistent channel. The
// reply arrives via handleMessage.
func (p *Pipeline) dispatchStreaming(turn *Turn, text, model string) (*Turn, error) {
	msg, err := protocol.NewChatMessage(turn.ID, text, model)
	if err != nil {
		p.abortTurn(turn)
		return nil, fmt.Errorf("tutor: encode chat: %w", err)
	}

	if err := p.config.Channel.Send(msg); err != nil {
		p.abortTurn(turn)
		return nil, fmt.Errorf("tutor: dispatch: %w", err)
	}

	p.logger.Debug("turn dispatched", "turn", turn.ID, "model", model)
	return turn, nil
}

// dispatchDirect calls the generator synchronously.
func (p *Pipeline) dispatchDirect(ctx context.Context, turn *Turn, text, model string, preset models.Preset, genCtx []backend.ContextTurn) (*Turn, error) {
	start := time.Now()

	resp, err := p.svc.Generate(ctx, &backend.GenerateRequest{
		Text:        text,
		Model:       model,
		Context:     genCtx,
		MaxTokens:   preset.MaxTokens,
		Temperature: preset.Temperature,
	})
	if err != nil {
		p.abortTurn(turn)
		return nil, fmt.Errorf("tutor: generate: %w", err)
	}

	latency := resp.LatencySeconds
	if latency == 0 {
		latency = time.Since(start).Seconds()
	}

	p.completeTurn(ctx, turn, resp.Text, resp.Model, latency, resp.TokensPerSecond)
	return turn, nil
}

// abortTurn backs out a turn whose dispatch failed.
func (p *Pipeline) abortTurn(turn *Turn) {
	p.history.remove(turn)
	p.mu.Lock()
	if p.outstanding == turn {
		p.outstanding = nil
	}
	p.mu.Unlock()
}

// completeTurn fills in the reply, records stats, consults the model
// policy and speaks the reply.
func (p *Pipeline) completeTurn(ctx context.Context, turn *Turn, text, model string, latency, tokensPerSec float64) {
	pinned := p.selector.Pinned() != ""

	p.mu.Lock()
	turn.AssistantText = text
	turn.LatencySeconds = latency
	turn.Model = model
	// While pinned, a reply reporting a different model must not steer
	// subsequent turns off the pin.
	if model != "" && !pinned {
		p.currentModel = model
	}
	p.outstanding = nil
	fn := p.onTurnComplete
	p.mu.Unlock()

	p.stats.Record(model, latency, tokensPerSec)
	p.logger.Info("turn complete",
		"turn", turn.ID,
		"model", model,
		"latency_s", latency)

	p.applyPolicy(ctx)
	p.speak(ctx, text)

	if fn != nil {
		fn(*turn)
	}
}

// refreshAvailability re-reads the catalog so the policy never selects
// a model the backend can no longer serve. Unlike RefreshCatalog it
// leaves the current model alone.
func (p *Pipeline) refreshAvailability(ctx context.Context) {
	resp, err := p.svc.ListModels(ctx)
	if err != nil {
		p.logger.Warn("catalog refresh failed", "error", err)
		return
	}
	p.mu.Lock()
	p.catalog = resp.Models
	p.mu.Unlock()
}

// applyPolicy picks the model for the next turn. The catalog is
// refreshed on every turn; the switch itself runs only when the mode
// allows automatic switching and no manual pin is set.
func (p *Pipeline) applyPolicy(ctx context.Context) {
	p.refreshAvailability(ctx)

	if p.selector.Pinned() != "" || !p.Mode().Preset().AutoSwitch {
		return
	}

	p.mu.Lock()
	catalog := make([]models.Info, len(p.catalog))
	copy(catalog, p.catalog)
	current := p.currentModel
	p.mu.Unlock()

	if len(catalog) == 0 {
		return
	}

	// Fold observed performance into the candidates for tie-breaks.
	for i := range catalog {
		if perf, ok := p.stats.Performance(catalog[i].ID); ok {
			catalog[i].ObservedLatency = perf.AvgLatencySeconds
			catalog[i].ObservedTokensPerSec = perf.TokensPerSecond
		}
	}

	sel, err := p.selector.Select(catalog)
	if err != nil {
		p.logger.Warn("model selection failed", "error", err)
		return
	}
	if sel.ID == current {
		return
	}

	if err := p.svc.SwitchModel(ctx, sel.ID); err != nil {
		p.logger.Warn("model switch failed", "model", sel.ID, "error", err)
		return
	}

	p.mu.Lock()
	p.currentModel = sel.ID
	p.mu.Unlock()
	p.logger.Info("model switched", "from", current, "to", sel.ID)
}

// speak synthesizes and plays the reply. Failures are logged, never
// propagated; the turn is already committed.
func (p *Pipeline) speak(ctx context.Context, text string) {
	if !p.config.Synthesize || p.config.Player == nil {
		return
	}

	resp, err := p.svc.Synthesize(ctx, &backend.SynthesizeRequest{Text: text})
	if err != nil {
		p.logger.Warn("synthesis failed", "error", err)
		return
	}

	pcm, rate, channels := decodePCM(resp.Audio)
	clip := &capture.Clip{PCM: pcm, SampleRate: rate, Channels: channels}
	if err := p.config.Player.Play(ctx, clip); err != nil {
		p.logger.Warn("playback rejected", "error", err)
	}
}

// handleMessage processes inbound channel events.
func (p *Pipeline) handleMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeChatReply:
		reply, err := msg.GetChatReply()
		if err != nil {
			p.logger.Warn("bad chat reply", "error", err)
			return
		}
		p.handleReply(reply)

	case protocol.TypeModelSwitched:
		data, err := msg.GetModelSwitchedData()
		if err != nil {
			return
		}
		p.mu.Lock()
		p.currentModel = data.Model
		p.mu.Unlock()
		p.logger.Info("server switched model", "model", data.Model)

	case protocol.TypeConnected:
		data, err := msg.GetConnectedData()
		if err != nil {
			return
		}
		p.mu.Lock()
		p.currentModel = data.CurrentModel
		p.mu.Unlock()
		p.logger.Info("session established", "model", data.CurrentModel, "mode", data.Mode)

	case protocol.TypePing:
		if data, err := msg.GetPingData(); err == nil && p.config.Channel != nil {
			pong, err := protocol.NewPongMessage(data.ID, data.Timestamp, time.Now().UnixMilli())
			if err == nil {
				_ = p.config.Channel.Send(pong)
			}
		}
	}
}

// handleReply correlates a streamed reply with the outstanding turn.
func (p *Pipeline) handleReply(reply *protocol.ChatReply) {
	p.mu.Lock()
	turn := p.outstanding
	p.mu.Unlock()

	if turn == nil || turn.ID != reply.RequestID {
		p.logger.Warn("dropping uncorrelated reply", "request_id", reply.RequestID)
		return
	}

	if reply.Error != "" {
		err := fmt.Errorf("tutor: backend: %s", reply.Error)
		p.abortTurn(turn)

		p.mu.Lock()
		fn := p.onTurnError
		p.mu.Unlock()
		p.logger.Warn("turn failed", "turn", turn.ID, "error", reply.Error)
		if fn != nil {
			fn(turn.ID, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p.completeTurn(ctx, turn, reply.Text, reply.Model, reply.LatencySeconds, reply.TokensPerSecond)
}
