package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/falalabs/go-fala/internal/httpc"
)

// Client talks to the tutor backend over HTTP.
type Client struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a backend client.
func NewClient(opts ...Option) *Client {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpc.NewClient(cfg.Timeout)
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		config:  cfg,
		http:    hc,
		logger:  cfg.Logger.With("component", "backend.client"),
	}
}

// Transcribe sends the recording to the speech-to-text endpoint.
func (c *Client) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	const endpoint = "/transcribe"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("audio", "recording.wav")
	if err != nil {
		return nil, wrapErr(endpoint, err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, wrapErr(endpoint, err)
	}

	lang := req.Language
	if lang == "" {
		lang = c.config.Language
	}
	if lang != "" {
		if err := w.WriteField("language", lang); err != nil {
			return nil, wrapErr(endpoint, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, wrapErr(endpoint, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, wrapErr(endpoint, err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(endpoint, resp)
	}

	var result TranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("decode response: %w", err))
	}

	c.logger.Debug("transcribed", "chars", len(result.Text), "language", result.Language)
	return &result, nil
}

// Generate asks the chat endpoint for a tutor reply.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	const endpoint = "/chat"

	resp, err := c.postJSON(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(endpoint, resp)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("decode response: %w", err))
	}

	c.logger.Debug("generated reply",
		"model", result.Model,
		"latency_s", result.LatencySeconds,
		"tokens_per_s", result.TokensPerSecond)
	return &result, nil
}

// ListModels fetches the model catalog.
func (c *Client) ListModels(ctx context.Context) (*ModelsResponse, error) {
	const endpoint = "/models"

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(endpoint, resp)
	}

	var result ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("decode response: %w", err))
	}
	return &result, nil
}

// SwitchModel activates a model on the backend.
func (c *Client) SwitchModel(ctx context.Context, model string) error {
	const endpoint = "/switch-model"

	resp, err := c.postJSON(ctx, endpoint, map[string]string{"model": model})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	if resp.StatusCode != http.StatusOK {
		return c.parseError(endpoint, resp)
	}
	return nil
}

// Synthesize converts text to speech audio.
func (c *Client) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	const endpoint = "/tts"

	resp, err := c.postJSON(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(endpoint, resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("read audio: %w", err))
	}

	return &SynthesizeResponse{
		Audio:  audio,
		Engine: resp.Header.Get("X-TTS-Engine"),
	}, nil
}

// Engines lists the installed synthesis engines.
func (c *Client) Engines(ctx context.Context) (*EnginesResponse, error) {
	const endpoint = "/tts/engines"

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(endpoint, resp)
	}

	var result EnginesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("decode response: %w", err))
	}
	return &result, nil
}

// SwitchEngine activates a synthesis engine on the backend.
func (c *Client) SwitchEngine(ctx context.Context, engine string) error {
	const endpoint = "/tts/switch"

	resp, err := c.postJSON(ctx, endpoint, map[string]string{"engine": engine})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if resp.StatusCode != http.StatusOK {
		return c.parseError(endpoint, resp)
	}
	return nil
}

// Health checks that the backend responds.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/models")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError("/models", resp)
	}
	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, wrapErr(endpoint, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, wrapErr(endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapErr(endpoint, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	return resp, nil
}

// parseError extracts an API error from a non-200 response.
func (c *Client) parseError(endpoint string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var detail struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &detail) == nil {
		if detail.Detail != "" {
			msg = detail.Detail
		} else if detail.Error != "" {
			msg = detail.Error
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Endpoint:   endpoint,
	}
}

// Verify Client implements Service at compile time.
var _ Service = (*Client)(nil)
