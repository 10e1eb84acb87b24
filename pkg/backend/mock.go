package backend

import (
	"context"
	"sync"
)

// Mock implements Service for testing.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	TranscribeFunc func(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error)

	// GenerateFunc is called when Generate is invoked.
	GenerateFunc func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// SynthesizeFunc is called when Synthesize is invoked.
	SynthesizeFunc func(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// ListModelsFunc is called when ListModels is invoked.
	ListModelsFunc func(ctx context.Context) (*ModelsResponse, error)

	// SwitchModelFunc is called when SwitchModel is invoked.
	SwitchModelFunc func(ctx context.Context, model string) error

	mu    sync.Mutex
	calls []string
}

// NewMock creates a mock backend with canned defaults.
func NewMock() *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
			return &TranscribeResponse{Text: "hello", Language: "en"}, nil
		},
		GenerateFunc: func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
			return &GenerateResponse{
				Text:            "Hello! How can I help you practice today?",
				Model:           "mock",
				LatencySeconds:  0.1,
				TokensPerSecond: 50,
			}, nil
		},
		SynthesizeFunc: func(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
			return &SynthesizeResponse{Audio: []byte("RIFF"), Engine: "mock"}, nil
		},
	}
}

// Transcribe calls TranscribeFunc and records the call.
func (m *Mock) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	m.record("Transcribe")
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, req)
	}
	return nil, wrapErr("mock", ErrUnavailable)
}

// Generate calls GenerateFunc and records the call.
func (m *Mock) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	m.record("Generate")
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return nil, wrapErr("mock", ErrUnavailable)
}

// Synthesize calls SynthesizeFunc and records the call.
func (m *Mock) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	m.record("Synthesize")
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, req)
	}
	return nil, wrapErr("mock", ErrUnavailable)
}

// Engines returns a single mock engine.
func (m *Mock) Engines(ctx context.Context) (*EnginesResponse, error) {
	m.record("Engines")
	return &EnginesResponse{Engines: []string{"mock"}, Current: "mock"}, nil
}

// SwitchEngine records the call and succeeds.
func (m *Mock) SwitchEngine(ctx context.Context, engine string) error {
	m.record("SwitchEngine")
	return nil
}

// ListModels calls ListModelsFunc and records the call.
func (m *Mock) ListModels(ctx context.Context) (*ModelsResponse, error) {
	m.record("ListModels")
	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx)
	}
	return &ModelsResponse{Current: "mock"}, nil
}

// SwitchModel calls SwitchModelFunc and records the call.
func (m *Mock) SwitchModel(ctx context.Context, model string) error {
	m.record("SwitchModel")
	if m.SwitchModelFunc != nil {
		return m.SwitchModelFunc(ctx, model)
	}
	return nil
}

// Health records the call and succeeds.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health")
	return nil
}

// Close records the call and succeeds.
func (m *Mock) Close() error {
	m.record("Close")
	return nil
}

func (m *Mock) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
}

// CallCount returns how many times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Verify Mock implements Service at compile time.
var _ Service = (*Mock)(nil)
